package world

import (
	"math"
)

// SectionsPerChunk and ChunkSectionSize name the dense intermediate
// container the terrain algorithm below fills before it's compacted into
// the store's sparse Chunk/Section representation. Kept distinct from
// SectionHeight/SectionBlockCount in types.go so the generation algorithm
// (ported wholesale) doesn't need to change its indexing.
const (
	SectionsPerChunk  = SectionHeight
	ChunkSectionSize  = SectionBlockCount
)

// rawSections is the dense, always-allocated working buffer the generation
// algorithm below fills a whole chunk into; air entries are zero. It's
// compacted into a Chunk's sparse []*Section form only once, at the end of
// Generate. Declared as an alias (not a defined type) so it stays
// assignable to village.go's generateVillage, which takes the literal
// array type directly.
type rawSections = [SectionsPerChunk][ChunkSectionSize]uint16

// Generator produces terrain data from a seed using Perlin noise.
type Generator struct {
	Seed         int64
	terrain      *Perlin      // broad height map noise
	roughness    *Perlin      // fine detail / roughness noise
	tempNoise    *Perlin      // biome temperature
	rainNoise    *Perlin      // biome rainfall
	caveNoise    *Perlin      // 3D cave carving
	cave2        *Perlin      // secondary 3D cave noise for spaghetti caves
	treeNoise    *Perlin      // tree placement
	boulderNoise *Perlin      // boulder placement
	villageGen   *VillageGrid // village placement grid
	lakeNoise    *Perlin      // lake carving noise
	riverNoise   *Perlin      // river carving noise
}

// NewGenerator creates a terrain generator from a seed.
func NewGenerator(seed int64) *Generator {
	g := &Generator{
		Seed:         seed,
		terrain:      NewPerlin(seed),
		roughness:    NewPerlin(seed + 100),
		tempNoise:    NewPerlin(seed + 1),
		rainNoise:    NewPerlin(seed + 2),
		caveNoise:    NewPerlin(seed + 3),
		cave2:        NewPerlin(seed + 5),
		treeNoise:    NewPerlin(seed + 4),
		boulderNoise: NewPerlin(seed + 200),
		lakeNoise:    NewPerlin(seed + 300),
		riverNoise:   NewPerlin(seed + 400),
	}
	g.villageGen = NewVillageGrid(seed)
	return g
}

// SurfaceHeight returns the solid surface Y for the given world-space x, z.
func (g *Generator) SurfaceHeight(x, z int) int {
	biome := BiomeAt(g.tempNoise, g.rainNoise, x, z)

	const noiseScale = 0.015
	h := g.terrain.OctaveNoise2D(float64(x)*noiseScale, float64(z)*noiseScale, 3, 2.0, 0.5)

	height := float64(biome.BaseHeight) + h*biome.HeightVariation

	const riverScale = 0.003
	rv := g.riverNoise.Noise2D(float64(x)*riverScale, float64(z)*riverScale)
	rv = math.Abs(rv)
	if rv < 0.04 {
		factor := (0.04 - rv) / 0.04
		depth := factor * 15.0
		height -= depth
	}

	const lakeScale = 0.01
	lv := g.lakeNoise.Noise2D(float64(x)*lakeScale, float64(z)*lakeScale)
	if lv > 0.82 {
		factor := (lv - 0.82) / (1.0 - 0.82)
		depth := factor * 12.0
		height -= depth
	}

	return int(height)
}

// isCave returns true if the block at (x,y,z) should be carved into a cave.
func (g *Generator) isCave(x, y, z int) bool {
	lowRes := g.caveNoise.Noise3D(float64(x)*0.03, float64(y)*0.03, float64(z)*0.03)
	if lowRes > 0.5 {
		spaghetti := g.cave2.Noise3D(float64(x)*0.08, float64(y)*0.08, float64(z)*0.08)
		return spaghetti > 0.3
	}
	return false
}

// shouldPlaceTree returns true if a tree should be placed at (x, z) given the biome's density.
func (g *Generator) shouldPlaceTree(x, z int, biome *Biome) bool {
	if biome.TreeDensity <= 0 || g.villageGen.IsInVillage(x, z) {
		return false
	}

	const clusterScale = 0.02
	clusterVal := g.treeNoise.Noise2D(float64(x)*clusterScale, float64(z)*clusterScale)
	clusterVal = (clusterVal + 1) / 2

	effectiveDensity := biome.TreeDensity * (clusterVal * 1.5)

	hash := uint32(x*73856093 ^ z*191152071 ^ int(g.Seed))
	hash ^= hash >> 16
	hash *= 0x85ebca6b
	hash ^= hash >> 13
	hash *= 0xc2b2ae35
	hash ^= hash >> 16

	randVal := float64(hash) / float64(0xFFFFFFFF)

	return randVal < effectiveDensity
}

// WaterLevel is the sea level.
const WaterLevel = 62

// BlockAt returns the natural (undecorated) block state at a world
// position, without trees/boulders/villages — used by callers that only
// need surface/terrain classification.
func (g *Generator) BlockAt(x, y, z int) uint16 {
	if y < 0 || y > 255 {
		return 0
	}
	if y == 0 {
		return 7 << 4 // bedrock
	}

	surfH := g.SurfaceHeight(x, z)
	if y > surfH {
		if y <= WaterLevel {
			return 8 << 4 // water
		}
		return 0 // air
	}

	biome := BiomeAt(g.tempNoise, g.rainNoise, x, z)
	if y < surfH {
		return biome.FillerBlock
	}
	return biome.SurfaceBlock
}

func (g *Generator) generateTrees(chunkX, chunkZ int, sections *rawSections) {
	for lx := 2; lx < 14; lx++ {
		for lz := 2; lz < 14; lz++ {
			wx := chunkX*16 + lx
			wz := chunkZ*16 + lz

			biome := BiomeAt(g.tempNoise, g.rainNoise, wx, wz)
			if !g.shouldPlaceTree(wx, wz, biome) {
				continue
			}

			surfaceY := g.SurfaceHeight(wx, wz)
			if surfaceY > 240 || g.isCave(wx, surfaceY, wz) {
				continue
			}

			surfBlock := sections[surfaceY/16][(surfaceY%16*16+lz)*16+lx] >> 4
			if surfBlock != 2 && surfBlock != 80 && surfBlock != 3 && surfBlock != 12 {
				continue
			}

			treeType := 0
			if biome == BiomeDesert {
				treeType = 5
			} else if biome == BiomeJungle {
				treeType = 3
			} else if biome == BiomeDarkForest {
				treeType = 4
			} else if biome == BiomeForest {
				if (wx*31+wz*17)%10 < 3 {
					treeType = 2
				}
			} else if biome == BiomeExtremeHills || biome == BiomeSnowyTundra {
				treeType = 1
			}

			switch treeType {
			case 1:
				g.buildSpruceTree(lx, surfaceY+1, lz, sections)
			case 2:
				g.buildGenericTree(lx, surfaceY+1, lz, 2, sections)
			case 3:
				g.buildJungleTree(lx, surfaceY+1, lz, sections)
			case 4:
				g.buildDarkOakTree(lx, surfaceY+1, lz, sections)
			case 5:
				if (wx*13+wz*7)%10 < 4 {
					g.buildCactus(lx, surfaceY+1, lz, sections)
				} else {
					sec, sy := (surfaceY+1)/16, (surfaceY+1)%16
					sections[sec][(sy*16+lz)*16+lx] = 31 << 4
				}
			default:
				g.buildGenericTree(lx, surfaceY+1, lz, 0, sections)
			}
		}
	}
}

func (g *Generator) buildGenericTree(lx, y, lz int, meta uint16, sections *rawSections) {
	trunkTop := y + 3
	for ty := y; ty <= trunkTop+1; ty++ {
		sec, sy := ty/16, ty%16
		current := sections[sec][(sy*16+lz)*16+lx] >> 4
		if current == 0 || current == 31 || current == 18 || current == 161 {
			sections[sec][(sy*16+lz)*16+lx] = 17<<4 | meta
		}
	}
	leafBase := uint16(18<<4 | meta)
	for dy := -1; dy <= 0; dy++ {
		ly := trunkTop + dy
		sec, sy := ly/16, ly%16
		for dx := -2; dx <= 2; dx++ {
			for dz := -2; dz <= 2; dz++ {
				if (dx == -2 || dx == 2) && (dz == -2 || dz == 2) {
					continue
				}
				nlx, nlz := lx+dx, lz+dz
				if nlx >= 0 && nlx < 16 && nlz >= 0 && nlz < 16 {
					if sections[sec][(sy*16+nlz)*16+nlx] == 0 {
						sections[sec][(sy*16+nlz)*16+nlx] = leafBase
					}
				}
			}
		}
	}
	for dy := 1; dy <= 2; dy++ {
		ly := trunkTop + dy
		sec, sy := ly/16, ly%16
		for dx := -1; dx <= 1; dx++ {
			for dz := -1; dz <= 1; dz++ {
				if dy == 2 && dx != 0 && dz != 0 {
					continue
				}
				nlx, nlz := lx+dx, lz+dz
				if nlx >= 0 && nlx < 16 && nlz >= 0 && nlz < 16 {
					if sections[sec][(sy*16+nlz)*16+nlx] == 0 {
						sections[sec][(sy*16+nlz)*16+nlx] = leafBase
					}
				}
			}
		}
	}
}

func (g *Generator) buildSpruceTree(lx, y, lz int, sections *rawSections) {
	height := 5 + (lx*13+lz*7)%3
	trunkTop := y + height - 1
	for ty := y; ty <= trunkTop; ty++ {
		sec, sy := ty/16, ty%16
		current := sections[sec][(sy*16+lz)*16+lx] >> 4
		if current == 0 || current == 31 || current == 18 || current == 161 {
			sections[sec][(sy*16+lz)*16+lx] = 17<<4 | 1
		}
	}
	leafBase := uint16(18<<4 | 1)
	for dy := 2; dy <= height; dy++ {
		ly := y + dy
		sec, sy := ly/16, ly%16
		radius := 2
		if dy > height-2 {
			radius = 0
		} else if dy > height-4 {
			radius = 1
		}
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				if radius > 1 && (dx == -radius || dx == radius) && (dz == -radius || dz == radius) {
					continue
				}
				nlx, nlz := lx+dx, lz+dz
				if nlx >= 0 && nlx < 16 && nlz >= 0 && nlz < 16 {
					if sections[sec][(sy*16+nlz)*16+nlx] == 0 {
						sections[sec][(sy*16+nlz)*16+nlx] = leafBase
					}
				}
			}
		}
	}
}

func (g *Generator) buildJungleTree(lx, y, lz int, sections *rawSections) {
	height := 8 + (lx*7+lz*13)%6
	trunkTop := y + height - 1
	for ty := y; ty <= trunkTop; ty++ {
		sec, sy := ty/16, ty%16
		current := sections[sec][(sy*16+lz)*16+lx] >> 4
		if current == 0 || current == 31 || current == 18 || current == 161 {
			sections[sec][(sy*16+lz)*16+lx] = 17<<4 | 3
		}
	}
	leafBase := uint16(18<<4 | 3)
	for dy := height - 3; dy <= height; dy++ {
		radius := 2
		if dy == height {
			radius = 1
		}
		ly := y + dy
		sec, sy := ly/16, ly%16
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				if (dx*dx + dz*dz) > radius*radius+1 {
					continue
				}
				nlx, nlz := lx+dx, lz+dz
				if nlx >= 0 && nlx < 16 && nlz >= 0 && nlz < 16 {
					if sections[sec][(sy*16+nlz)*16+nlx] == 0 {
						sections[sec][(sy*16+nlz)*16+nlx] = leafBase
					}
				}
			}
		}
	}
}

func (g *Generator) buildDarkOakTree(lx, y, lz int, sections *rawSections) {
	height := 6 + (lx*3+lz*5)%3
	trunkTop := y + height - 1
	for dx := 0; dx <= 1; dx++ {
		for dz := 0; dz <= 1; dz++ {
			nlx, nlz := lx+dx, lz+dz
			if nlx < 16 && nlz < 16 {
				for ty := y; ty <= trunkTop; ty++ {
					sec, sy := ty/16, ty%16
					current := sections[sec][(sy*16+nlz)*16+nlx] >> 4
					if current == 0 || current == 31 || current == 18 || current == 161 {
						sections[sec][(sy*16+nlz)*16+nlx] = 162<<4 | 1
					}
				}
			}
		}
	}
	leafBase := uint16(161<<4 | 1)
	for dy := height - 3; dy <= height; dy++ {
		ly := y + dy
		sec, sy := ly/16, ly%16
		radius := 3
		if dy == height {
			radius = 2
		}
		for dx := -radius + 1; dx <= radius; dx++ {
			for dz := -radius + 1; dz <= radius; dz++ {
				if (dx*dx + dz*dz) > radius*radius+2 {
					continue
				}
				nlx, nlz := lx+dx, lz+dz
				if nlx >= 0 && nlx < 16 && nlz >= 0 && nlz < 16 {
					if sections[sec][(sy*16+nlz)*16+nlx] == 0 {
						sections[sec][(sy*16+nlz)*16+nlx] = leafBase
					}
				}
			}
		}
	}
}

func (g *Generator) buildCactus(lx, y, lz int, sections *rawSections) {
	height := 2 + (lx*7+lz*13)%2
	for ty := y; ty < y+height; ty++ {
		sec, sy := ty/16, ty%16
		sections[sec][(sy*16+lz)*16+lx] = 81 << 4
	}
}

func (g *Generator) generateBoulders(chunkX, chunkZ int, sections *rawSections) {
	for lx := 1; lx < 15; lx++ {
		for lz := 1; lz < 15; lz++ {
			wx, wz := chunkX*16+lx, chunkZ*16+lz
			biome := BiomeAt(g.tempNoise, g.rainNoise, wx, wz)
			if biome.BoulderDensity <= 0 || g.villageGen.IsInVillage(wx, wz) {
				continue
			}

			const clusterScale = 0.01
			clusterVal := g.boulderNoise.Noise2D(float64(wx)*clusterScale, float64(wz)*clusterScale)
			clusterVal = (clusterVal + 1) / 2

			effectiveDensity := (biome.BoulderDensity / 40.0) * (clusterVal * 2.0)

			hash := uint32(wx*142071 ^ wz*650021 ^ int(g.Seed+42))
			hash ^= hash >> 16
			hash *= 0x85ebca6b
			hash ^= hash >> 13
			hash *= 0xc2b2ae35
			hash ^= hash >> 16

			randVal := float64(hash) / float64(0xFFFFFFFF)

			if randVal > effectiveDensity {
				continue
			}

			y := g.SurfaceHeight(wx, wz)
			sec, sy := y/16, y%16
			if sections[sec][(sy*16+lz)*16+lx]>>4 != 2 && sections[sec][(sy*16+lz)*16+lx]>>4 != 3 {
				continue
			}

			hr := wx*31 + wz*17
			if hr < 0 {
				hr = -hr
			}
			baseRadius := 3.0 + float64(hr%3)
			for dx := -int(baseRadius) - 1; dx <= int(baseRadius)+1; dx++ {
				for dy := -1; dy <= int(baseRadius); dy++ {
					for dz := -int(baseRadius) - 1; dz <= int(baseRadius)+1; dz++ {
						distSq := float64(dx*dx)/(baseRadius*baseRadius) +
							float64(dy*dy)/((baseRadius-0.5)*(baseRadius-0.5)) +
							float64(dz*dz)/(baseRadius*baseRadius)

						noiseOff := float64((wx+dx*7+wz+dz*11+dy*13)%100) / 100.0 * 0.4
						if distSq+noiseOff > 1.0 {
							continue
						}

						nlx, nlz := lx+dx, lz+dz
						if nlx < 0 || nlx >= 16 || nlz < 0 || nlz >= 16 {
							continue
						}

						targetY := y + dy
						if targetY < 0 || targetY > 255 {
							continue
						}

						h := (wx + dx*31 + wz*dz*17 + dy*23)
						block := uint16(4 << 4)
						r := h % 100
						if r < 30 {
							block = 1 << 4
						} else if r < 60 {
							block = 1<<4 | 5
						} else if r < 80 {
							block = 48 << 4
						}

						targetSec, targetSy := targetY/16, targetY%16
						targetID := sections[targetSec][(targetSy*16+nlz)*16+nlx] >> 4
						if targetID == 0 || targetID == 2 || targetID == 31 || targetID == 3 {
							sections[targetSec][(targetSy*16+nlz)*16+nlx] = block
						}
					}
				}
			}
		}
	}
}

// generateRaw fills a dense section buffer with terrain, village structures,
// boulders, and trees for chunk (chunkX, chunkZ).
func (g *Generator) generateRaw(chunkX, chunkZ int) (*rawSections, [256]byte) {
	sections := &rawSections{}
	var biomes [256]byte

	for lx := 0; lx < 16; lx++ {
		for lz := 0; lz < 16; lz++ {
			wx, wz := chunkX*16+lx, chunkZ*16+lz
			biome := BiomeAt(g.tempNoise, g.rainNoise, wx, wz)
			biomes[lz*16+lx] = biome.ID

			surfH := g.SurfaceHeight(wx, wz)

			for y := 0; y < 256; y++ {
				sec := y / 16
				sy := y % 16
				idx := (sy*16+lz)*16 + lx

				if y == 0 {
					sections[sec][idx] = 7 << 4
					continue
				}

				if y <= surfH {
					if g.isCave(wx, y, wz) && y < surfH-2 {
						if y <= WaterLevel {
							sections[sec][idx] = 8 << 4
						} else {
							sections[sec][idx] = 0
						}
						continue
					}

					if y < surfH {
						sections[sec][idx] = biome.FillerBlock
					} else {
						if y < WaterLevel {
							sections[sec][idx] = 12 << 4
						} else {
							sections[sec][idx] = biome.SurfaceBlock
						}
					}
				} else if y <= WaterLevel {
					sections[sec][idx] = 8 << 4
				} else {
					break
				}
			}
		}
	}

	villageY := g.SurfaceHeight(chunkX*16+8, chunkZ*16+8)
	if villageY < WaterLevel {
		villageY = WaterLevel
	}
	g.villageGen.generateVillage(chunkX, chunkZ, villageY, sections)

	g.generateBoulders(chunkX, chunkZ, sections)
	g.generateTrees(chunkX, chunkZ, sections)

	return sections, biomes
}

// Generate produces the chunk at pos and installs it into w. This is the
// "external terrain generator" the generation scheduler's worker loop
// invokes for each requested position; it mutates the world store
// directly rather than returning a value the caller serializes.
func (g *Generator) Generate(w *World, pos ChunkPos) {
	raw, biomes := g.generateRaw(int(pos.X), int(pos.Z))

	c := NewChunk(pos)
	c.Biomes = biomes
	for i := 0; i < SectionsPerChunk; i++ {
		empty := true
		for _, b := range raw[i] {
			if b != 0 {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		sec := Section(raw[i])
		c.Sections[i] = &sec
	}
	w.InsertChunk(c)
}
