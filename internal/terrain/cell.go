// SPDX-License-Identifier: MIT

// Package terrain models the 2D operating area of a rescue mission: a grid
// of weighted cells with obstacles, danger zones, survivor markers and a
// pheromone field deposited by drones.
package terrain

import "fmt"

// CellType identifies what occupies a grid cell.
type CellType uint8

const (
	// CellNormal is open ground with nominal movement cost.
	CellNormal CellType = iota
	// CellObstacle blocks movement entirely.
	CellObstacle
	// CellDanger is passable but expensive to cross.
	CellDanger
	// CellSurvivor marks a cell occupied by a survivor awaiting rescue.
	CellSurvivor
)

// Symbol returns the single-character map symbol for the cell type.
func (c CellType) Symbol() byte {
	switch c {
	case CellNormal:
		return '.'
	case CellObstacle:
		return '#'
	case CellDanger:
		return '~'
	case CellSurvivor:
		return 'S'
	default:
		return '?'
	}
}

// String implements fmt.Stringer.
func (c CellType) String() string {
	switch c {
	case CellNormal:
		return "normal"
	case CellObstacle:
		return "obstacle"
	case CellDanger:
		return "danger"
	case CellSurvivor:
		return "survivor"
	default:
		return fmt.Sprintf("celltype(%d)", uint8(c))
	}
}

// Point is a grid coordinate. Y is the row, X is the column.
type Point struct {
	Y int `json:"y" yaml:"y"`
	X int `json:"x" yaml:"x"`
}

// String implements fmt.Stringer.
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Y, p.X)
}
