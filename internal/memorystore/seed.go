package memorystore

import "ctrmdash/internal/domain"

// SeedTrades returns the trades loaded at startup.
func SeedTrades() []domain.Trade {
	return []domain.Trade{
		{ID: 1, Date: "2025-07-08", Commodity: "WTI", Venue: "NYMEX", Side: domain.SideSell, Quantity: 50000, Price: 82.1, Counterparty: "Delta Trading", Status: domain.StatusCaptured},
		{ID: 2, Date: "2025-07-07", Commodity: "Brent", Venue: "ICE", Side: domain.SideBuy, Quantity: 30000, Price: 85.7, Counterparty: "Blue Refining", Status: domain.StatusSettled},
		{ID: 3, Date: "2025-07-05", Commodity: "WTI", Venue: "NYMEX", Side: domain.SideBuy, Quantity: 20000, Price: 79.9, Counterparty: "Acme Air", Status: domain.StatusInvoiced},
		{ID: 4, Date: "2025-07-03", Commodity: "GasOil", Venue: "ICE", Side: domain.SideSell, Quantity: 15000, Price: 92.3, Counterparty: "Omega Marine", Status: domain.StatusCaptured},
	}
}

// SeedRecommendations returns the AI recommendations shown in the side panel.
func SeedRecommendations() []domain.Recommendation {
	return []domain.Recommendation{
		{
			ID:    1,
			Title: "Sell 50k bbl WTI Sep @ ≥ $82",
			Rationale: []string{
				"q50 > trigger for 4/5 days",
				"Basis HOU-RTM widening",
				"Delta exposure > policy band",
			},
			PnL:        "+$420k vs baseline",
			Confidence: 0.78,
			Action:     domain.ActionSell,
			Instrument: "WTI Sep",
		},
		{
			ID:         2,
			Title:      "Buy 10k bbl Brent Oct to cover deficit",
			Rationale:  []string{"Inventory draw risk", "FX tailwind"},
			PnL:        "+$75k",
			Confidence: 0.66,
			Action:     domain.ActionBuy,
			Instrument: "Brent Oct",
		},
		{
			ID:         3,
			Title:      "Reduce Oct WTI hedge by 10k",
			Rationale:  []string{"MtM stress > threshold", "Calendar spread flattening"},
			PnL:        "+$30k",
			Confidence: 0.61,
			Action:     domain.ActionReduce,
			Instrument: "WTI Oct",
		},
	}
}

// SeedVessels returns the port markers and the Rotterdam → Houston route.
func SeedVessels() domain.Vessels {
	return domain.Vessels{
		Ports: []domain.Port{
			{Name: "Rotterdam", Lat: 51.94, Lon: 4.14},
			{Name: "Houston", Lat: 29.73, Lon: -95.26},
			{Name: "Cushing", Lat: 35.99, Lon: -96.77},
		},
		Route: []domain.LatLon{
			{51.94, 4.14},
			{46.0, -15.0},
			{36.0, -40.0},
			{29.73, -95.26},
		},
	}
}
