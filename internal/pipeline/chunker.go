package pipeline

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/pvops/cams-pipeline/internal/frame"
)

// DefaultChunkSize is the number of location rows per chunk file.
const DefaultChunkSize = 100

// Chunk reads the full input CSV and writes it back out as contiguous blocks
// of at most size rows, each an independent CSV named
// unprocessed_data_<i>.csv with a 1-based index. The last chunk may be
// smaller. It returns the number of chunk files produced.
//
// There is no cleanup on partial failure: chunks written before an error
// stay in place.
func Chunk(inputFile, outputFolder string, size int) (int, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}

	input, err := frame.ReadFile(inputFile)
	if err != nil {
		return 0, err
	}

	count := 0
	for start := 0; start < input.NumRows(); start += size {
		chunk := input.Slice(start, start+size)
		count++

		chunkFile := filepath.Join(outputFolder, fmt.Sprintf("unprocessed_data_%d.csv", count))
		if err := chunk.WriteFile(chunkFile); err != nil {
			return count, err
		}
	}

	log.Printf("INFO: created %d chunked files in %s", count, outputFolder)
	return count, nil
}
