package session

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// maxReadBurstSize caps a single reservation regardless of the configured
// rate, mirroring the teacher pack's ThrottledWriter burst ceiling.
const maxReadBurstSize = 256 * 1024

// assumedBytesPerPacket turns RuntimeLimits.MaxPacketsPerSecond (a packet
// budget) into a byte-rate budget for the token bucket, since a rate.Limiter
// gating an io.Reader only ever sees bytes. 128 is a generous estimate of a
// typical Play-phase packet's size for this protocol subset.
const assumedBytesPerPacket = 128

// throttledReader is a token-bucket-limited io.Reader, the read-side
// counterpart of nishisan-dev-n-backup's ThrottledWriter: every byte read
// consumes one token, and Read blocks (respecting ctx) until enough tokens
// are available.
type throttledReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

// newThrottledReader wraps r with a rate limiter budgeted from
// packetsPerSec. A non-positive budget disables throttling entirely,
// returning r unwrapped — the same bypass rule ThrottledWriter uses.
func newThrottledReader(ctx context.Context, r io.Reader, packetsPerSec int) io.Reader {
	if packetsPerSec <= 0 {
		return r
	}

	bytesPerSec := packetsPerSec * assumedBytesPerPacket
	burst := bytesPerSec
	if burst > maxReadBurstSize {
		burst = maxReadBurstSize
	}

	return &throttledReader{
		r:       r,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), burst),
		ctx:     ctx,
	}
}

func (tr *throttledReader) Read(p []byte) (int, error) {
	chunk := len(p)
	if chunk > tr.limiter.Burst() {
		chunk = tr.limiter.Burst()
	}
	if err := tr.limiter.WaitN(tr.ctx, chunk); err != nil {
		return 0, err
	}
	return tr.r.Read(p[:chunk])
}
