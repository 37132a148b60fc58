package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// writeSSEEvent writes v as a JSON server-sent event. Marshaled JSON never
// contains a raw newline, so the data fits on a single data line.
func writeSSEEvent(w io.Writer, id int64, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "id: %s\n", strconv.FormatInt(id, 10)); err != nil {
		return err
	}

	if name != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", name); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}

	return nil
}
