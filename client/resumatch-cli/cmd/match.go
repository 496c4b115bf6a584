package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

type rankedResume struct {
	Filename        string   `json:"filename"`
	DocumentID      string   `json:"document_id"`
	SectionName     string   `json:"section_name"`
	MatchPercentage float64  `json:"match_percentage"`
	Name            string   `json:"name"`
	Skills          []string `json:"skills"`
	Experience      string   `json:"experience"`
}

type matchResponse struct {
	Matches []rankedResume     `json:"matches"`
	Scores  map[string]float64 `json:"scores"`
	Summary string             `json:"summary"`
}

var (
	matchTopK          int
	matchMinSimilarity float64
	matchExportPath    string
)

var matchCmd = &cobra.Command{
	Use:   "match [jd-file] [resume-files...]",
	Short: "Match resume files against a job description",
	Long:  `Uploads the job description and the resume files, waits for the ranked results and prints them best-first. With --export the results are also written to an XLSX report.`,
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		matchResumes(args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().IntVar(&matchTopK, "top-k", 0, "number of section hits to retrieve (0 uses the server default)")
	matchCmd.Flags().Float64Var(&matchMinSimilarity, "min-similarity", 0, "similarity floor in [0,1] (0 uses the server default)")
	matchCmd.Flags().StringVar(&matchExportPath, "export", "", "write the results to an XLSX report at this path")
}

func matchResumes(jobPath string, resumePaths []string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := addFilePart(writer, "job_description", jobPath); err != nil {
		log.Fatalf("Error attaching job description: %v", err)
	}
	for _, path := range resumePaths {
		if err := addFilePart(writer, "resumes", path); err != nil {
			log.Fatalf("Error attaching resume %s: %v", path, err)
		}
	}
	if matchTopK > 0 {
		writer.WriteField("top_k", strconv.Itoa(matchTopK))
	}
	if matchMinSimilarity > 0 {
		writer.WriteField("min_similarity", strconv.FormatFloat(matchMinSimilarity, 'f', -1, 64))
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("Error finalizing upload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/api/match-resumes", &buf)
	if err != nil {
		log.Fatalf("Error creating request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result matchResponse
	decodeResponse(doRequest(req), &result)

	printMatches(result)

	if matchExportPath != "" {
		if err := exportReport(matchExportPath, jobPath, result); err != nil {
			log.Fatalf("Error writing report: %v", err)
		}
		fmt.Printf("\nReport written to %s\n", matchExportPath)
	}
}

func addFilePart(writer *multipart.Writer, field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}

func printMatches(result matchResponse) {
	if len(result.Matches) == 0 {
		fmt.Println(result.Summary)
		return
	}

	fmt.Printf("%-4s %-32s %8s  %-24s %-14s %s\n", "#", "FILE", "MATCH", "CANDIDATE", "SECTION", "EXPERIENCE")
	for i, m := range result.Matches {
		fmt.Printf("%-4d %-32s %7.2f%%  %-24s %-14s %s\n", i+1, m.Filename, m.MatchPercentage, m.Name, m.SectionName, m.Experience)
	}
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Println(result.Summary)
}

// exportReport writes the ranked matches to one sheet and the run overview to
// a second one.
func exportReport(path, jobPath string, result matchResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	const matchesSheet = "Matches"
	if err := f.SetSheetName("Sheet1", matchesSheet); err != nil {
		return err
	}

	headers := []string{"Rank", "Filename", "Match %", "Candidate", "Section", "Experience", "Skills"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(matchesSheet, cell, header); err != nil {
			return err
		}
	}
	for row, m := range result.Matches {
		values := []interface{}{row + 1, m.Filename, m.MatchPercentage, m.Name, m.SectionName, m.Experience, strings.Join(m.Skills, ", ")}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(matchesSheet, cell, value); err != nil {
				return err
			}
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	overview := [][]interface{}{
		{"Job description", jobPath},
		{"Matches", len(result.Matches)},
		{"Summary", result.Summary},
	}
	for row, pair := range overview {
		for col, value := range pair {
			cell, err := excelize.CoordinatesToCellName(col+1, row+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(summarySheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
