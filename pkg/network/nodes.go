package network

import (
	"fmt"
	"strconv"

	"github.com/sdewaal/specnet/pkg/core"
)

// DefaultCoordinateScaler stretches unit-scale embedding coordinates into
// pixel space for display.
const DefaultCoordinateScaler = 100.0

const defaultNodeSize = 25.0

// NodeData is the payload of a Cytoscape node element.
type NodeData struct {
	ID              string  `json:"id"`
	PrecursorMZ     float64 `json:"precursor_mz"`
	Label           string  `json:"label"`
	Size            float64 `json:"size"`
	Log2Ratio       string  `json:"log2ratio"`
	EffectDirection string  `json:"effect_direction"`
	Group           string  `json:"group"`
}

// Position is a preset layout coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single Cytoscape node element.
type Node struct {
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
	Classes  string   `json:"classes"`
}

// Coordinate is a 2D embedding coordinate aligned with the spectra ordering.
type Coordinate struct {
	X float64
	Y float64
}

// NodeStats carries per-feature summary statistics for display emphasis.
type NodeStats struct {
	Size            float64
	Log2Ratio       string
	EffectDirection string
}

// Elements bundles the node and edge element lists of a network.
type Elements struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// GenerateNodeList builds the Cytoscape node list from spectra, embedding
// coordinates and group assignments, all aligned with the spectra ordering.
// stats may be nil, in which case display defaults are used. Coordinates are
// multiplied by scaler.
func GenerateNodeList(
	spectra []*core.Spectrum,
	coords []Coordinate,
	groupIDs []int,
	stats []NodeStats,
	scaler float64,
) ([]Node, error) {
	if len(coords) != len(spectra) {
		return nil, fmt.Errorf("coordinate count %d does not match spectra count %d", len(coords), len(spectra))
	}
	if len(groupIDs) != len(spectra) {
		return nil, fmt.Errorf("group count %d does not match spectra count %d", len(groupIDs), len(spectra))
	}
	if stats != nil && len(stats) != len(spectra) {
		return nil, fmt.Errorf("stats count %d does not match spectra count %d", len(stats), len(spectra))
	}
	if scaler == 0 {
		scaler = DefaultCoordinateScaler
	}

	nodes := make([]Node, len(spectra))
	for i, spectrum := range spectra {
		entry := NodeStats{Size: defaultNodeSize, Log2Ratio: "none", EffectDirection: "none"}
		if stats != nil {
			entry = stats[i]
		}
		group := "group_" + strconv.Itoa(groupIDs[i])
		nodes[i] = Node{
			Data: NodeData{
				ID:              spectrum.FeatureID,
				PrecursorMZ:     spectrum.PrecursorMZ,
				Label:           nodeLabel(spectrum),
				Size:            entry.Size,
				Log2Ratio:       entry.Log2Ratio,
				EffectDirection: entry.EffectDirection,
				Group:           group,
			},
			Position: Position{
				X: coords[i].X * scaler,
				Y: coords[i].Y * scaler,
			},
			Classes: group,
		}
	}
	return nodes, nil
}

func nodeLabel(spectrum *core.Spectrum) string {
	mz := strconv.FormatFloat(core.RoundFloat(spectrum.PrecursorMZ, 6), 'f', -1, 64)
	return spectrum.FeatureID + "; " + mz
}
