package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/compsim/internal/dynamo"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// WriteCSV writes one row per sample: time followed by each component.
// Column names default to x0, x1, ... when labels is shorter than the state.
// Values are written with 10 significant digits, so reading the file back
// with ReadCSV does not reproduce the trajectory bit for bit.
func WriteCSV(w io.Writer, traj *dynamo.Trajectory, labels []string) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, traj.Dims()+1)
	header = append(header, "time")
	for i := 0; i < traj.Dims(); i++ {
		if i < len(labels) {
			header = append(header, labels[i])
		} else {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, traj.Dims()+1)
	for i := 0; i < traj.Len(); i++ {
		row[0] = formatFloat(traj.Time(i))
		for d := 0; d < traj.Dims(); d++ {
			row[d+1] = formatFloat(traj.At(d, i))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	RunMetadata
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// WriteJSON writes the metadata together with the full trajectory, one
// state per sample. Non-finite values cannot be encoded and yield an error.
func WriteJSON(w io.Writer, meta RunMetadata, traj *dynamo.Trajectory) error {
	data := ExportData{
		RunMetadata: meta,
		Times:       traj.Times(),
		States:      make([][]float64, traj.Len()),
	}
	for i := range data.States {
		data.States[i] = traj.Column(i)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
