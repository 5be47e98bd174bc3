// Package geom provides the point, voxel, and block coordinate types and
// conversions shared across the fusion core, following dvid's
// geometry.go point-geometry conventions (ChunkPoint3d / IndexZYX).
package geom

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Point3d is a point in a continuous 3D frame (camera or world/global).
type Point3d struct {
	X, Y, Z float64
}

func (p Point3d) Add(q Point3d) Point3d { return Point3d{p.X + q.X, p.Y + q.Y, p.Z + q.Z} }
func (p Point3d) Sub(q Point3d) Point3d { return Point3d{p.X - q.X, p.Y - q.Y, p.Z - q.Z} }
func (p Point3d) Scale(s float64) Point3d {
	return Point3d{p.X * s, p.Y * s, p.Z * s}
}

func (p Point3d) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", p.X, p.Y, p.Z)
}

// Transform is a rigid sensor-to-world pose, T_G_C: applying it to a
// camera-frame point yields the world-frame point.
type Transform struct {
	Rotation    [3][3]float64
	Translation Point3d
}

// Identity returns the identity pose.
func Identity() Transform {
	var t Transform
	t.Rotation[0][0], t.Rotation[1][1], t.Rotation[2][2] = 1, 1, 1
	return t
}

// Apply maps a camera-frame point into the world (global) frame: p_G = T_G_C * p_C.
func (t Transform) Apply(p Point3d) Point3d {
	r := t.Rotation
	return Point3d{
		X: r[0][0]*p.X + r[0][1]*p.Y + r[0][2]*p.Z + t.Translation.X,
		Y: r[1][0]*p.X + r[1][1]*p.Y + r[1][2]*p.Z + t.Translation.Y,
		Z: r[2][0]*p.X + r[2][1]*p.Y + r[2][2]*p.Z + t.Translation.Z,
	}
}

// GlobalVoxelIndex identifies a single voxel in the infinite sparse grid.
type GlobalVoxelIndex struct {
	X, Y, Z int32
}

// BlockIndex identifies a block (a fixed-edge cube of voxels) in the grid.
type BlockIndex struct {
	X, Y, Z int32
}

// LocalVoxelIndex is a voxel's offset within its owning block.
type LocalVoxelIndex struct {
	X, Y, Z uint8
}

// floorDiv and floorMod implement Euclidean division so that negative
// coordinates map to blocks/offsets consistently (no off-by-one at the
// origin).
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int32) int32 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// GlobalVoxelIndexFromPoint converts a world-frame point to a global voxel
// index given the reciprocal voxel size.
func GlobalVoxelIndexFromPoint(p Point3d, voxelSizeInv float64) GlobalVoxelIndex {
	return GlobalVoxelIndex{
		X: int32(floorFloat(p.X * voxelSizeInv)),
		Y: int32(floorFloat(p.Y * voxelSizeInv)),
		Z: int32(floorFloat(p.Z * voxelSizeInv)),
	}
}

func floorFloat(v float64) float64 {
	i := float64(int64(v))
	if v < i {
		i--
	}
	return i
}

// BlockIndexFromGlobalVoxelIndex returns the block that owns a global voxel.
func BlockIndexFromGlobalVoxelIndex(g GlobalVoxelIndex, voxelsPerSide int32) BlockIndex {
	return BlockIndex{
		X: floorDiv(g.X, voxelsPerSide),
		Y: floorDiv(g.Y, voxelsPerSide),
		Z: floorDiv(g.Z, voxelsPerSide),
	}
}

// LocalFromGlobalVoxelIndex returns the voxel's offset within its block.
func LocalFromGlobalVoxelIndex(g GlobalVoxelIndex, voxelsPerSide int32) LocalVoxelIndex {
	return LocalVoxelIndex{
		X: uint8(floorMod(g.X, voxelsPerSide)),
		Y: uint8(floorMod(g.Y, voxelsPerSide)),
		Z: uint8(floorMod(g.Z, voxelsPerSide)),
	}
}

// OriginFromBlockIndex returns the world-frame origin (minimum corner) of a block.
func OriginFromBlockIndex(b BlockIndex, blockSize float64) Point3d {
	return Point3d{
		X: float64(b.X) * blockSize,
		Y: float64(b.Y) * blockSize,
		Z: float64(b.Z) * blockSize,
	}
}

// Hash produces a well-mixed 64-bit hash of a global voxel index, used by
// the lock striping array to pick a stripe. Uses xxhash rather than a
// generic checksum package since the hash sits on the hot path of every
// voxel update and only needs speed and spread, not cryptographic or
// streaming properties.
func (g GlobalVoxelIndex) Hash() uint64 {
	var buf [12]byte
	putInt32(buf[0:4], g.X)
	putInt32(buf[4:8], g.Y)
	putInt32(buf[8:12], g.Z)
	return xxhash.Sum64(buf[:])
}

func putInt32(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u)
	b[1] = byte(u >> 8)
	b[2] = byte(u >> 16)
	b[3] = byte(u >> 24)
}

func (b BlockIndex) String() string {
	return fmt.Sprintf("(%d,%d,%d)", b.X, b.Y, b.Z)
}

func (g GlobalVoxelIndex) String() string {
	return fmt.Sprintf("(%d,%d,%d)", g.X, g.Y, g.Z)
}
