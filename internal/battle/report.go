package battle

// ObjectiveCaptureEntry is one row of the report's objective_timeline.
type ObjectiveCaptureEntry struct {
	Time        float64 `json:"time"`
	ObjectiveID string  `json:"objective"`
	NewOwner    string  `json:"new_owner"`
}

// FactionReport is one faction's entry in the post-action report.
type FactionReport struct {
	InitialStrength int     `json:"initial_strength"`
	Survivors       int     `json:"survivors"`
	VP              float64 `json:"vp"`
	DamageDealt     float64 `json:"damage_dealt"`
}

// ReportMeta carries battle-level summary fields.
type ReportMeta struct {
	Duration float64 `json:"duration"`
	Map      string  `json:"map"`
	Winner   string  `json:"winner"`
}

// Report is the post-action JSON document handed to the campaign layer at
// battle end.
type Report struct {
	Meta              ReportMeta                 `json:"meta"`
	Factions          map[string]FactionReport   `json:"factions"`
	ObjectiveTimeline []ObjectiveCaptureEntry    `json:"objective_timeline"`
	Events            []Event                    `json:"events"`
}

// BuildReport assembles the final report from battle state. mapName
// identifies the template/biome used at init.
func BuildReport(winner, mapName string, duration float64, standings *Standings, armies map[string][]*Unit, timeline []ObjectiveCaptureEntry, events []Event) Report {
	factions := make(map[string]FactionReport, len(armies))
	for factionID, roster := range armies {
		survivors := 0
		for _, u := range roster {
			if u.IsAlive() {
				survivors++
			}
		}
		stats := standings.Stats(factionID)
		factions[factionID] = FactionReport{
			InitialStrength: stats.InitialStrength,
			Survivors:       survivors,
			VP:              standings.VP(factionID),
			DamageDealt:     stats.DamageDealt,
		}
	}
	return Report{
		Meta:              ReportMeta{Duration: duration, Map: mapName, Winner: winner},
		Factions:          factions,
		ObjectiveTimeline: timeline,
		Events:            events,
	}
}
