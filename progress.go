package anaconda

import "github.com/Saraiah-TiPeAnCo-Wilson/anaconda-client/formstream"

// Re-export progress types from formstream.
type (
	// Progress reports cumulative bytes sent during an upload transfer.
	Progress = formstream.Progress

	// ProgressFunc receives progress updates while the storage leg
	// streams. A panicking callback never aborts the transfer.
	ProgressFunc = formstream.ProgressFunc
)
