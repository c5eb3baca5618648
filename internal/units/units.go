// Package units holds the fixed unit-conversion constants and pure conversion
// functions shared by the fuel services and the analytics package. Gallons and
// miles are the storage-canonical units; everything else is converted at the
// boundary.
package units

import "math"

const (
	// LitersPerGallon is the US liquid gallon in liters.
	LitersPerGallon = 3.78541

	// KilometersPerMile converts statute miles to kilometers.
	KilometersPerMile = 1.609344

	// KmPerLiterPerMPG converts miles-per-gallon to kilometers-per-liter.
	KmPerLiterPerMPG = 0.425144

	// LitersPer100KmFactor divided by an MPG value yields liters per 100 km.
	LitersPer100KmFactor = 235.215
)

func GallonsToLiters(gal float64) float64 { return gal * LitersPerGallon }

func LitersToGallons(l float64) float64 { return l / LitersPerGallon }

func MilesToKilometers(mi float64) float64 { return mi * KilometersPerMile }

func KilometersToMiles(km float64) float64 { return km / KilometersPerMile }

func MPGToKmPerLiter(mpg float64) float64 { return mpg * KmPerLiterPerMPG }

func KmPerLiterToMPG(kmpl float64) float64 { return kmpl / KmPerLiterPerMPG }

// MPGToLitersPer100Km converts an MPG value into the European consumption
// notation. Zero input returns zero rather than +Inf.
func MPGToLitersPer100Km(mpg float64) float64 {
	if mpg == 0 {
		return 0
	}
	return LitersPer100KmFactor / mpg
}

// CostPerDistance returns the currency cost of driving one distance unit at
// the given efficiency (distance units per fuel unit) and price per fuel unit.
// Zero efficiency returns zero.
func CostPerDistance(pricePerUnit, efficiency float64) float64 {
	if efficiency == 0 {
		return 0
	}
	return pricePerUnit / efficiency
}

// Round2 rounds to two decimal places, the currency scale used throughout.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
