package directory

// DefaultMandis returns the built-in Gujarat mandi directory.
// Modal prices are in ₹/quintal. Typical distances are measured from
// the Kheda district farming belt, the service's default catchment.
func DefaultMandis() []*Mandi {
	return []*Mandi{
		{
			ID:                "mnd_nadiad",
			Market:            "Nadiad APMC",
			District:          "Kheda",
			State:             "Gujarat",
			Location:          Point{Lat: 22.6916, Lon: 72.8634},
			TypicalDistanceKm: 8,
			DemandLevel:       DemandMedium,
			TradingHours:      "6:00 AM - 2:00 PM",
			Prices: map[string]float64{
				"Tomato":      2900,
				"Potato":      1250,
				"Onion":       1900,
				"Wheat":       2250,
				"Rice":        2850,
				"Cauliflower": 1900,
				"Cabbage":     1450,
			},
		},
		{
			ID:                "mnd_anand",
			Market:            "Anand APMC",
			District:          "Anand",
			State:             "Gujarat",
			Location:          Point{Lat: 22.5645, Lon: 72.9289},
			TypicalDistanceKm: 15,
			DemandLevel:       DemandHigh,
			TradingHours:      "6:00 AM - 1:00 PM",
			Prices: map[string]float64{
				"Tomato":      3100,
				"Potato":      1350,
				"Onion":       2000,
				"Wheat":       2300,
				"Rice":        2950,
				"Cotton":      6800,
				"Cauliflower": 2000,
				"Cabbage":     1550,
			},
		},
		{
			ID:                "mnd_ahmedabad",
			Market:            "Ahmedabad (Jetalpur) APMC",
			District:          "Ahmedabad",
			State:             "Gujarat",
			Location:          Point{Lat: 22.9276, Lon: 72.5797},
			TypicalDistanceKm: 45,
			DemandLevel:       DemandHigh,
			TradingHours:      "5:00 AM - 12:00 PM",
			Prices: map[string]float64{
				"Tomato":      3500,
				"Potato":      1500,
				"Onion":       2300,
				"Wheat":       2450,
				"Rice":        3150,
				"Chilli Red":  10500,
				"Cauliflower": 2300,
				"Cabbage":     1750,
			},
		},
		{
			ID:                "mnd_vadodara",
			Market:            "Vadodara (Sayajipura) APMC",
			District:          "Vadodara",
			State:             "Gujarat",
			Location:          Point{Lat: 22.3072, Lon: 73.1812},
			TypicalDistanceKm: 40,
			DemandLevel:       DemandHigh,
			TradingHours:      "6:00 AM - 2:00 PM",
			Prices: map[string]float64{
				"Tomato":      3300,
				"Potato":      1450,
				"Onion":       2150,
				"Wheat":       2400,
				"Rice":        3050,
				"Chilli Red":  9800,
				"Cauliflower": 2150,
				"Cabbage":     1650,
			},
		},
		{
			ID:                "mnd_gandhinagar",
			Market:            "Gandhinagar APMC",
			District:          "Gandhinagar",
			State:             "Gujarat",
			Location:          Point{Lat: 23.2156, Lon: 72.6369},
			TypicalDistanceKm: 70,
			DemandLevel:       DemandMedium,
			TradingHours:      "6:00 AM - 1:00 PM",
			Prices: map[string]float64{
				"Tomato":      3200,
				"Potato":      1400,
				"Onion":       2100,
				"Wheat":       2350,
				"Rice":        3000,
				"Cauliflower": 2100,
			},
		},
		{
			ID:                "mnd_bharuch",
			Market:            "Bharuch APMC",
			District:          "Bharuch",
			State:             "Gujarat",
			Location:          Point{Lat: 21.7051, Lon: 72.9959},
			TypicalDistanceKm: 105,
			DemandLevel:       DemandMedium,
			TradingHours:      "6:00 AM - 2:00 PM",
			Prices: map[string]float64{
				"Tomato": 3000,
				"Onion":  2050,
				"Wheat":  2300,
				"Rice":   2900,
				"Cotton": 7000,
			},
		},
		{
			ID:                "mnd_surat",
			Market:            "Surat APMC",
			District:          "Surat",
			State:             "Gujarat",
			Location:          Point{Lat: 21.1702, Lon: 72.8311},
			TypicalDistanceKm: 150,
			DemandLevel:       DemandHigh,
			TradingHours:      "5:00 AM - 1:00 PM",
			Prices: map[string]float64{
				"Tomato":      3600,
				"Potato":      1550,
				"Onion":       2400,
				"Rice":        3200,
				"Chilli Red":  11000,
				"Cauliflower": 2400,
				"Cabbage":     1800,
			},
		},
		{
			ID:                "mnd_rajkot",
			Market:            "Rajkot APMC",
			District:          "Rajkot",
			State:             "Gujarat",
			Location:          Point{Lat: 22.3039, Lon: 70.8022},
			TypicalDistanceKm: 220,
			DemandLevel:       DemandMedium,
			TradingHours:      "6:00 AM - 2:00 PM",
			Prices: map[string]float64{
				"Onion":      2200,
				"Wheat":      2500,
				"Cotton":     7200,
				"Chilli Red": 10000,
			},
		},
		{
			ID:                "mnd_mehsana",
			Market:            "Mehsana APMC",
			District:          "Mehsana",
			State:             "Gujarat",
			Location:          Point{Lat: 23.5880, Lon: 72.3693},
			TypicalDistanceKm: 120,
			DemandLevel:       DemandLow,
			TradingHours:      "6:00 AM - 12:00 PM",
			Prices: map[string]float64{
				"Potato": 1300,
				"Wheat":  2400,
				"Cotton": 6500,
			},
		},
	}
}
