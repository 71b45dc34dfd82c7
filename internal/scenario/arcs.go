package scenario

// BuiltIn returns predefined batches.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"regional-leaders": {
			Name:        "Regional Leaders",
			Description: "Launch the same policy from the largest economy of every region.",
			Replicas:    20,
			Runs: []Entry{
				{Name: "north-america", Origin: "United States", Strength: 0.5, Years: 15},
				{Name: "europe", Origin: "Germany", Strength: 0.5, Years: 15},
				{Name: "asia", Origin: "China", Strength: 0.5, Years: 15},
				{Name: "oceania", Origin: "Australia", Strength: 0.5, Years: 15},
				{Name: "south-america", Origin: "Brazil", Strength: 0.5, Years: 15},
				{Name: "africa", Origin: "South Africa", Strength: 0.5, Years: 15},
				{Name: "middle-east", Origin: "Saudi Arabia", Strength: 0.5, Years: 15},
			},
		},
		"strength-sweep": {
			Name:        "Strength Sweep",
			Description: "Vary policy strength from a fixed origin to find the tipping point.",
			Replicas:    20,
			Runs: []Entry{
				{Name: "s0.1", Origin: "United States", Strength: 0.1, Years: 25},
				{Name: "s0.3", Origin: "United States", Strength: 0.3, Years: 25},
				{Name: "s0.5", Origin: "United States", Strength: 0.5, Years: 25},
				{Name: "s0.7", Origin: "United States", Strength: 0.7, Years: 25},
				{Name: "s0.9", Origin: "United States", Strength: 0.9, Years: 25},
				{Name: "s1.0", Origin: "United States", Strength: 1.0, Years: 25},
			},
		},
		"long-horizon": {
			Name:        "Long Horizon",
			Description: "A weak policy from a small country observed for a century.",
			Replicas:    10,
			Runs: []Entry{
				{Name: "nz-weak", Origin: "New Zealand", Strength: 0.2, Years: 100},
			},
		},
	}
}
