package country

// DefaultSpecs returns the reference table of 31 countries.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "United States", ISO: "USA", Region: NorthAmerica},
		{Name: "Canada", ISO: "CAN", Region: NorthAmerica},
		{Name: "United Kingdom", ISO: "GBR", Region: Europe},
		{Name: "Germany", ISO: "DEU", Region: Europe},
		{Name: "France", ISO: "FRA", Region: Europe},
		{Name: "Italy", ISO: "ITA", Region: Europe},
		{Name: "Spain", ISO: "ESP", Region: Europe},
		{Name: "Netherlands", ISO: "NLD", Region: Europe},
		{Name: "Sweden", ISO: "SWE", Region: Europe},
		{Name: "Poland", ISO: "POL", Region: Europe},
		{Name: "Russia", ISO: "RUS", Region: Europe},
		{Name: "China", ISO: "CHN", Region: Asia},
		{Name: "Japan", ISO: "JPN", Region: Asia},
		{Name: "South Korea", ISO: "KOR", Region: Asia},
		{Name: "India", ISO: "IND", Region: Asia},
		{Name: "Singapore", ISO: "SGP", Region: Asia},
		{Name: "Australia", ISO: "AUS", Region: Oceania},
		{Name: "New Zealand", ISO: "NZL", Region: Oceania},
		{Name: "Brazil", ISO: "BRA", Region: SouthAmerica},
		{Name: "Mexico", ISO: "MEX", Region: SouthAmerica},
		{Name: "Argentina", ISO: "ARG", Region: SouthAmerica},
		{Name: "South Africa", ISO: "ZAF", Region: Africa},
		{Name: "Nigeria", ISO: "NGA", Region: Africa},
		{Name: "Egypt", ISO: "EGY", Region: Africa},
		{Name: "Saudi Arabia", ISO: "SAU", Region: MiddleEast},
		{Name: "UAE", ISO: "ARE", Region: MiddleEast},
		{Name: "Turkey", ISO: "TUR", Region: MiddleEast},
		{Name: "Israel", ISO: "ISR", Region: MiddleEast},
		{Name: "Indonesia", ISO: "IDN", Region: Asia},
		{Name: "Vietnam", ISO: "VNM", Region: Asia},
		{Name: "Thailand", ISO: "THA", Region: Asia},
	}
}
