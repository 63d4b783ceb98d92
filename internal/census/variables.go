// Package census carries the built-in ACS 5-year variable catalog: the
// derived ratio variables the index is computed from, and the detail-table
// breakdowns used to recompute median statistics from neighboring areas.
package census

import (
	"fmt"

	"github.com/sells-group/svi-cli/internal/model"
)

// Population and household-size fields used for upstream filtering.
const (
	TotalPopulationField = "B01001_001E"
	HouseholdSizeField   = "B25010_001E"
)

// DefaultLowPopulation is the population threshold below which a boundary is
// excluded from analysis.
const DefaultLowPopulation = 75.0

// rentLows/rentHighs bracket the B25063 gross-rent distribution. The top
// bracket's high is only one above its low, per Census guidance for
// open-ended bins.
var (
	rentLows  = []float64{0, 100, 150, 200, 250, 300, 350, 400, 450, 500, 550, 600, 650, 700, 750, 800, 900, 1000, 1250, 1500, 2000, 2500, 3000, 3500}
	rentHighs = []float64{99, 149, 199, 249, 299, 349, 399, 449, 499, 549, 599, 649, 699, 749, 799, 899, 999, 1249, 1499, 1999, 2499, 2999, 3499, 3501}

	valueLows  = []float64{0, 10000, 15000, 20000, 25000, 30000, 35000, 40000, 50000, 60000, 70000, 80000, 90000, 100000, 125000, 150000, 175000, 200000, 250000, 300000, 400000, 500000, 750000, 1000000, 1500000, 2000000}
	valueHighs = []float64{9999, 14999, 19999, 24999, 29999, 34999, 39999, 49999, 59999, 69999, 79999, 89999, 99999, 124999, 149999, 174999, 199999, 249999, 299999, 399999, 499999, 749999, 999999, 1499999, 1999999, 2000001}

	ageLows  = []float64{0, 5, 10, 15, 18, 20, 21, 22, 25, 30, 35, 40, 45, 50, 55, 60, 62, 65, 67, 70, 75, 80, 85}
	ageHighs = []float64{4, 9, 14, 17, 19, 20, 21, 24, 29, 34, 39, 44, 49, 54, 59, 61, 64, 66, 69, 74, 79, 84, 86}
)

func acsFields(table string, from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("%s_%03dE", table, i))
	}
	return out
}

func singleFieldBins(fields []string, lows, highs []float64) []model.DetailBin {
	bins := make([]model.DetailBin, len(fields))
	for i, f := range fields {
		bins[i] = model.DetailBin{Low: lows[i], High: highs[i], Fields: []string{f}}
	}
	return bins
}

// GrossRentDetail is the B25063 breakdown underlying median gross rent.
func GrossRentDetail() *model.DetailSpec {
	return &model.DetailSpec{
		TotalField: "B25063_002E",
		Bins:       singleFieldBins(acsFields("B25063", 3, 26), rentLows, rentHighs),
	}
}

// HouseValueDetail is the B25075 breakdown underlying median housing value.
func HouseValueDetail() *model.DetailSpec {
	return &model.DetailSpec{
		TotalField: "B25075_001E",
		Bins:       singleFieldBins(acsFields("B25075", 2, 27), valueLows, valueHighs),
	}
}

// MedianAgeDetail is the B01001 sex-by-age breakdown underlying median age.
// Male and female brackets are pooled per age band.
func MedianAgeDetail() *model.DetailSpec {
	male := acsFields("B01001", 3, 25)
	female := acsFields("B01001", 27, 49)
	bins := make([]model.DetailBin, len(male))
	for i := range male {
		bins[i] = model.DetailBin{
			Low:    ageLows[i],
			High:   ageHighs[i],
			Fields: []string{male[i], female[i]},
		}
	}
	return &model.DetailSpec{TotalField: "B01001_001E", Bins: bins}
}

// Catalog returns the built-in derived variable definitions. PERCAP, QRICH,
// and MDHSEVAL default to inverse (higher value, lower vulnerability).
func Catalog() []model.VariableDef {
	return []model.VariableDef{
		{
			Name: "QAGEDEP",
			Numerator: []string{
				"B01001_026E", "B01001_003E", "B01001_020E", "B01001_021E",
				"B01001_022E", "B01001_023E", "B01001_024E", "B01001_025E",
				"B01001_027E", "B01001_044E", "B01001_045E", "B01001_046E",
				"B01001_047E", "B01001_048E", "B01001_049E",
			},
			Denominator: []string{"B01001_001E"},
			Description: "Percent of population under the age of 5 or over the age of 65",
		},
		{
			Name:        "QFEMALE",
			Numerator:   []string{"B01001_026E"},
			Denominator: []string{"B01001_001E"},
			Description: "Percent of population that is female",
		},
		{
			Name:        "MEDAGE",
			Numerator:   []string{"B01002_001E"},
			Description: "Median age",
			Detail:      MedianAgeDetail(),
		},
		{
			Name:        "QBLACK",
			Numerator:   []string{"B03002_004E"},
			Denominator: []string{"B03002_001E"},
			Description: "Percent of population that is non-Hispanic Black/African-American",
		},
		{
			Name:        "QNATIVE",
			Numerator:   []string{"B03002_005E"},
			Denominator: []string{"B03002_001E"},
			Description: "Percent of population that is non-Hispanic Native American",
		},
		{
			Name:        "QASIAN",
			Numerator:   []string{"B03002_006E"},
			Denominator: []string{"B03002_001E"},
			Description: "Percent of population that is non-Hispanic Asian",
		},
		{
			Name:        "QHISPC",
			Numerator:   []string{"B03002_012E"},
			Denominator: []string{"B03002_001E"},
			Description: "Percent of population that is Hispanic",
		},
		{
			Name:        "QFAM",
			Numerator:   []string{"B11005_005E"},
			Denominator: []string{"B11005_003E"},
			Description: "Percent of families where only one spouse is present in the household",
		},
		{
			Name:        "PPUNIT",
			Numerator:   []string{"B25010_001E"},
			Description: "People per unit, or average household size",
		},
		{
			Name:        "QFHH",
			Numerator:   []string{"B11001_006E"},
			Denominator: []string{"B11001_001E"},
			Description: "Percent of households with female householder and no spouse present",
		},
		{
			Name:        "QEDLESHI",
			Numerator:   acsFields("B15003", 2, 16),
			Denominator: []string{"B15003_001E"},
			Description: "Percent of population over the age of 25 with less than a high school diploma",
		},
		{
			Name:        "QCVLUN",
			Numerator:   []string{"B23025_005E"},
			Denominator: []string{"B23025_003E"},
			Description: "Percent of civilian population over the age of 15 that is unemployed",
		},
		{
			Name:        "QRICH",
			Numerator:   []string{"B19001_017E"},
			Denominator: []string{"B19001_001E"},
			Inverse:     true,
			Description: "Percent of households earning over $200,000 annually",
		},
		{
			Name:        "QSSBEN",
			Numerator:   []string{"B19055_002E"},
			Denominator: []string{"B19055_001E"},
			Description: "Percent of households with social security income",
		},
		{
			Name:        "PERCAP",
			Numerator:   []string{"B19301_001E"},
			Inverse:     true,
			Description: "Per capita income in the past 12 months",
		},
		{
			Name:        "QRENTER",
			Numerator:   []string{"B25003_003E"},
			Denominator: []string{"B25003_001E"},
			Description: "Percent of households that are renters",
		},
		{
			Name:        "QUNOCCHU",
			Numerator:   []string{"B25002_003E"},
			Denominator: []string{"B25002_001E"},
			Description: "Percent of housing units that are unoccupied",
		},
		{
			Name:        "QMOHO",
			Numerator:   []string{"B25024_010E"},
			Denominator: []string{"B25024_001E"},
			Description: "Percent of housing units that are mobile homes",
		},
		{
			Name:        "MDHSEVAL",
			Numerator:   []string{"B25077_001E"},
			Inverse:     true,
			Description: "Median housing value",
			Detail:      HouseValueDetail(),
		},
		{
			Name:        "MDGRENT",
			Numerator:   []string{"B25064_001E"},
			Description: "Median gross rent",
			Detail:      GrossRentDetail(),
		},
		{
			Name:        "QPOVTY",
			Numerator:   []string{"B17021_002E"},
			Denominator: []string{"B17021_001E"},
			Description: "Percent of population whose income in the past 12 months was below the poverty level",
		},
		{
			Name:        "QNOAUTO",
			Numerator:   []string{"B25044_003E", "B25044_010E"},
			Denominator: []string{"B25044_001E"},
			Description: "Percent of households without access to a car",
		},
		{
			Name: "QNOHLTH",
			Numerator: []string{
				"B27001_005E", "B27001_008E", "B27001_011E", "B27001_014E",
				"B27001_017E", "B27001_020E", "B27001_023E", "B27001_026E",
				"B27001_029E", "B27001_033E", "B27001_036E", "B27001_039E",
				"B27001_042E", "B27001_045E", "B27001_048E", "B27001_051E",
				"B27001_054E", "B27001_057E",
			},
			Denominator: []string{"B27001_001E"},
			Description: "Percent of population without health insurance",
		},
		{
			Name: "QESL",
			Numerator: []string{
				"B16004_007E", "B16004_008E", "B16004_012E", "B16004_013E",
				"B16004_017E", "B16004_018E", "B16004_022E", "B16004_023E",
				"B16004_029E", "B16004_030E", "B16004_034E", "B16004_035E",
				"B16004_039E", "B16004_040E", "B16004_044E", "B16004_045E",
				"B16004_051E", "B16004_052E", "B16004_056E", "B16004_057E",
				"B16004_061E", "B16004_062E", "B16004_066E", "B16004_067E",
			},
			Denominator: []string{"B16004_001E"},
			Description: `Percent of population who speaks English "not well" or "not at all"`,
		},
		{
			Name:        "QFEMLBR",
			Numerator:   []string{"C24010_038E"},
			Denominator: []string{"C24010_001E"},
			Description: "Percent of the civilian employed population over the age of 16 that is female",
		},
		{
			Name:        "QSERV",
			Numerator:   []string{"C24010_019E", "C24010_055E"},
			Denominator: []string{"C24010_001E"},
			Description: "Percent of the civilian employed population that has a service occupation",
		},
		{
			Name:        "QEXTRCT",
			Numerator:   []string{"C24010_032E", "C24010_068E"},
			Denominator: []string{"C24010_001E"},
			Description: "Percent of the civilian employed population that has a construction and extraction occupation",
		},
	}
}

// ByName indexes a definition list by variable name.
func ByName(defs []model.VariableDef) map[string]model.VariableDef {
	m := make(map[string]model.VariableDef, len(defs))
	for _, d := range defs {
		m[d.Name] = d
	}
	return m
}

// RawFields returns the union of raw fields referenced by the definitions,
// including detail-table fields, without duplicates.
func RawFields(defs []model.VariableDef) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(f string) {
		if _, ok := seen[f]; !ok {
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	for _, d := range defs {
		for _, f := range d.RawFields() {
			add(f)
		}
		if d.Detail != nil {
			add(d.Detail.TotalField)
			for _, b := range d.Detail.Bins {
				for _, f := range b.Fields {
					add(f)
				}
			}
		}
	}
	return out
}
