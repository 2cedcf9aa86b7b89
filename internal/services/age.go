package services

import (
	"fmt"
	"math"
	"time"

	"github.com/fonciercd/cadastre-api/internal/models"
)

// Age pyramid bucket layout: fifteen closed five-year ranges plus an
// open-ended top bucket.
const (
	pyramidBucketWidth = 5
	pyramidBucketCount = 16
)

// Age returns the number of whole years elapsed between birth and at:
// the calendar-year difference, decremented by one when the birthday has not
// yet occurred in at's year.
func Age(birth, at time.Time) int {
	years := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	return years
}

// pyramidBucketIndex maps an age to its bucket, or -1 for negative ages.
func pyramidBucketIndex(age int) int {
	if age < 0 {
		return -1
	}
	idx := age / pyramidBucketWidth
	if idx >= pyramidBucketCount-1 {
		return pyramidBucketCount - 1
	}
	return idx
}

// pyramidBucketLabel formats a bucket as "<min>-<max>", with the open-ended
// top bucket labeled "75+".
func pyramidBucketLabel(idx int) string {
	if idx == pyramidBucketCount-1 {
		return fmt.Sprintf("%d+", idx*pyramidBucketWidth)
	}
	low := idx * pyramidBucketWidth
	return fmt.Sprintf("%d-%d", low, low+pyramidBucketWidth-1)
}

// percentOf returns part as a percentage of total, rounded to one decimal.
// An empty total yields 0 rather than NaN.
func percentOf(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// BuildAgePyramid bins the given demographics into the fixed age buckets at
// the reference date. Buckets with no population still appear, in ascending
// age order. Persons without a recorded birth date or sex cannot be placed
// and are left out.
func BuildAgePyramid(demographics []models.Demographic, at time.Time) []models.AgeBucket {
	buckets := make([]models.AgeBucket, pyramidBucketCount)
	for i := range buckets {
		buckets[i].Tranche = pyramidBucketLabel(i)
	}

	for _, d := range demographics {
		if d.DateNaissance == nil || d.Sexe == nil {
			continue
		}
		idx := pyramidBucketIndex(Age(*d.DateNaissance, at))
		if idx < 0 {
			continue
		}
		switch *d.Sexe {
		case "M":
			buckets[idx].Hommes++
		case "F":
			buckets[idx].Femmes++
		}
	}

	for i := range buckets {
		b := &buckets[i]
		b.Total = b.Hommes + b.Femmes
		b.HommesPct = percentOf(b.Hommes, b.Total)
		b.FemmesPct = percentOf(b.Femmes, b.Total)
	}

	return buckets
}
