package spectral

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Decibel conversion with flooring and dynamic-range capping. Values are
// floored at amin before the log so silence maps to floorDB instead of -Inf,
// and everything more than -floorDB below the matrix peak is clamped to
// peak + floorDB.

// AmplitudeToDB converts a matrix of amplitude values to decibels relative to
// a unit reference, with floorDB (negative) bounding the dynamic range
func AmplitudeToDB(amplitude [][]float64, floorDB float64) [][]float64 {
	amin := math.Pow(10.0, floorDB/20.0)
	return toDB(amplitude, amin, 20.0, -floorDB)
}

// PowerToDB converts a matrix of power values to decibels relative to a unit
// reference, with floorDB (negative) bounding the dynamic range
func PowerToDB(power [][]float64, floorDB float64) [][]float64 {
	amin := math.Pow(10.0, floorDB/10.0)
	return toDB(power, amin, 10.0, -floorDB)
}

func toDB(values [][]float64, amin, scale, topDB float64) [][]float64 {
	if len(values) == 0 {
		return [][]float64{}
	}

	db := make([][]float64, len(values))

	peak := math.Inf(-1)
	for i, row := range values {
		db[i] = make([]float64, len(row))
		for j, v := range row {
			db[i][j] = scale * math.Log10(math.Max(amin, v))
		}
		if len(db[i]) > 0 {
			if rowMax := floats.Max(db[i]); rowMax > peak {
				peak = rowMax
			}
		}
	}

	// Cap the dynamic range relative to the running maximum
	floor := peak - topDB
	for _, row := range db {
		for j, v := range row {
			if v < floor {
				row[j] = floor
			}
		}
	}

	return db
}
