package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/pvops/cams-pipeline/internal/config"
	"github.com/pvops/cams-pipeline/internal/pipeline"
)

// cams-setup prepares a working directory for the processing pipeline: it
// creates the folder triad, writes config.json from the given parameters,
// and splits the input location list into chunk files in "unprocessed".
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	filePath := flag.String("file_path", "", "Path to input csv file. Required.")
	skyType := flag.String("sky_type", "", "Sky type: mcclear or cams_radiation. Required.")
	startDate := flag.String("start_date", "", "Start date in YYYY-MM-DD format. Required.")
	endDate := flag.String("end_date", "", "End date in YYYY-MM-DD format. Required.")
	timeStep := flag.String("time_step", "", "Time step: 1min, 15min, 1h, 1d or 1M. Required.")
	timeReference := flag.String("time_reference", "", "UT (universal time) or TST (true solar time). Required.")
	email := flag.String("email", "", "Email registered with the SoDa service. Required.")
	flag.Parse()

	if *filePath == "" {
		log.Fatalf("file_path is required")
	}

	baseDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to resolve working directory: %v", err)
	}

	folders, err := pipeline.SetupFolders(baseDir)
	if err != nil {
		log.Fatalf("failed to create folder structure: %v", err)
	}
	log.Printf("INFO: folder structure created under %s", baseDir)

	cfg := &config.Config{
		SkyType:           *skyType,
		StartDate:         *startDate,
		EndDate:           *endDate,
		TimeStep:          *timeStep,
		TimeReference:     *timeReference,
		ServerName:        config.DefaultServer,
		Timeout:           config.DefaultTimeout,
		Email:             *email,
		UnprocessedFolder: folders.Unprocessed,
		ProcessedFolder:   folders.Processed,
		ResultsFolder:     folders.Results,
	}

	// Reports every missing or invalid parameter in one pass.
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid parameters: %v", err)
	}

	// Best effort: a failed config write is reported but does not stop
	// the chunking step.
	if err := cfg.Write(config.DefaultConfigFile); err != nil {
		log.Printf("WARN: failed to write config file: %v", err)
	} else {
		log.Printf("INFO: config file created in %s", baseDir)
	}

	if _, err := pipeline.Chunk(*filePath, folders.Unprocessed, pipeline.DefaultChunkSize); err != nil {
		log.Fatalf("failed to chunk input data: %v", err)
	}
}
