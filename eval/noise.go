package eval

import "github.com/chewxy/math32"

// worley3 is cellular noise: the distance from p to the nearest feature
// point among the 27 surrounding lattice cells, each cell carrying one
// hashed feature point. Range [0, ~1.73], 0 exactly on a feature point.
func worley3(x, y, z float32) float32 {
	cx := math32.Floor(x)
	cy := math32.Floor(y)
	cz := math32.Floor(z)
	minDist := math32.Inf(1)
	for dz := float32(-1); dz <= 1; dz++ {
		for dy := float32(-1); dy <= 1; dy++ {
			for dx := float32(-1); dx <= 1; dx++ {
				ox, oy, oz := featurePoint(cx+dx, cy+dy, cz+dz)
				fx := cx + dx + ox
				fy := cy + dy + oy
				fz := cz + dz + oz
				d := (x-fx)*(x-fx) + (y-fy)*(y-fy) + (z-fz)*(z-fz)
				if d < minDist {
					minDist = d
				}
			}
		}
	}
	return math32.Sqrt(minDist)
}

// featurePoint returns the jittered offset of a cell's feature point in
// [0,1)^3, derived from the integer cell coordinates alone.
func featurePoint(cx, cy, cz float32) (float32, float32, float32) {
	h := cellHash(int64(cx), int64(cy), int64(cz))
	const inv = 1.0 / float32(1<<16)
	ox := float32(h&0xFFFF) * inv
	oy := float32((h>>16)&0xFFFF) * inv
	oz := float32((h>>32)&0xFFFF) * inv
	return ox, oy, oz
}

// cellHash mixes integer cell coordinates into 64 well-distributed bits,
// splitmix-style. Seedless: the same cell always yields the same feature
// point.
func cellHash(x, y, z int64) uint64 {
	h := uint64(x)*0x9E3779B97F4A7C15 ^ uint64(y)*0xC2B2AE3D27D4EB4F ^ uint64(z)*0x165667B19E3779F9
	h ^= h >> 30
	h *= 0xBF58476D1CE4E5B9
	h ^= h >> 27
	h *= 0x94D049BB133111EB
	h ^= h >> 31
	return h
}
