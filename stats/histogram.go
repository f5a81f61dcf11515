package stats

import (
	"fmt"
	"time"

	"github.com/AlexCSalinas/r-UofM-Ranked/models"
)

const hoursPerDay = 24

// BuildHistogram buckets event timestamps into 24 hour-of-day buckets.
// The result is always a dense 24-entry slice labelled "00".."23", with
// zero counts for quiet hours; empty input yields all zeros. Comments
// without an author are skipped, matching the aggregation rules.
func BuildHistogram(submissions []models.Submission, commentLists [][]models.Comment) []models.HourActivity {
	counts := make([]int, hoursPerDay)

	for _, submission := range submissions {
		counts[hourOfDay(submission.CreatedUTC)]++
	}

	for _, comments := range commentLists {
		for _, comment := range comments {
			if comment.Author == "" {
				continue
			}
			counts[hourOfDay(comment.CreatedUTC)]++
		}
	}

	histogram := make([]models.HourActivity, hoursPerDay)
	for hour := 0; hour < hoursPerDay; hour++ {
		histogram[hour] = models.HourActivity{
			Hour:  fmt.Sprintf("%02d", hour),
			Count: counts[hour],
		}
	}
	return histogram
}

func hourOfDay(epoch float64) int {
	return time.Unix(int64(epoch), 0).Hour()
}
