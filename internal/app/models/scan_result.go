package models

// ImageRef identifies a captured image by its file name inside the owning workspace
type ImageRef string

// ResultStatus is the grading outcome classification
type ResultStatus string

// ResultStatus constants. The wire values are shared with existing results.json files.
const (
	// StatusSuccess means the result was auto-accepted
	StatusSuccess ResultStatus = "success"
	// StatusReview means the result needs manual review
	StatusReview ResultStatus = "review"
)

// HighScoreRatio is the share of the total at which a score counts as high
const HighScoreRatio = 0.75

// ScanResult is the grading outcome for one captured answer sheet.
// ID is the ImageRef of the graded image.
type ScanResult struct {
	ID          ImageRef     `json:"id"`
	StudentName string       `json:"studentName"`
	Score       int          `json:"score"`
	Total       int          `json:"total"`
	Status      ResultStatus `json:"status"`
}

// IsHigh reports whether the score reaches HighScoreRatio of the total
func (r ScanResult) IsHigh() bool {
	return float64(r.Score) >= float64(r.Total)*HighScoreRatio
}

// ScannedSet returns the set of image refs that already have a result
func ScannedSet(results []ScanResult) map[ImageRef]struct{} {
	set := make(map[ImageRef]struct{}, len(results))
	for _, r := range results {
		set[r.ID] = struct{}{}
	}
	return set
}

// Summarize computes the workspace counters for a set of images and results
func Summarize(images []ImageRef, results []ScanResult) WorkspaceSummary {
	scanned := ScannedSet(results)
	summary := WorkspaceSummary{
		Images:  len(images),
		Results: len(results),
	}
	for _, img := range images {
		if _, ok := scanned[img]; !ok {
			summary.Pending++
		}
	}
	for _, r := range results {
		if r.IsHigh() {
			summary.High++
		} else {
			summary.Low++
		}
	}
	return summary
}
