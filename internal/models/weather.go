package models

// WeatherResponse is the OpenWeatherMap current weather payload (units=imperial).
// Every block is optional; missing keys leave the matching field unset.
type WeatherResponse struct {
	Wind *struct {
		Speed FlexFloat `json:"speed"`
	} `json:"wind,omitempty"`
	Main *struct {
		Temp FlexFloat `json:"temp"`
	} `json:"main,omitempty"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather,omitempty"`
}

// Conditions is the normalized weather at a venue
type Conditions struct {
	WindMPH *float64
	TempF   *float64
	Summary string
}

// ToConditions converts WeatherResponse (from API) to Conditions
func (wr *WeatherResponse) ToConditions() Conditions {
	cond := Conditions{Summary: "Unknown"}
	if wr.Wind != nil {
		cond.WindMPH = wr.Wind.Speed.Value
	}
	if wr.Main != nil {
		cond.TempF = wr.Main.Temp.Value
	}
	if len(wr.Weather) > 0 && wr.Weather[0].Main != "" {
		cond.Summary = wr.Weather[0].Main
	}
	return cond
}

// ToRecords fans the venue conditions out to one entity
func (c Conditions) ToRecords(e Entity, sourceID string, prov Provenance) []SourceRecord {
	var records []SourceRecord
	if c.WindMPH != nil {
		records = append(records, SourceRecord{
			EntityID:   e.ID,
			EntityName: e.Name,
			Metric:     MetricWindMPH,
			Value:      *c.WindMPH,
			SourceID:   sourceID,
			Provenance: prov,
		})
	}
	if c.TempF != nil {
		records = append(records, SourceRecord{
			EntityID:   e.ID,
			EntityName: e.Name,
			Metric:     MetricTempF,
			Value:      *c.TempF,
			SourceID:   sourceID,
			Provenance: prov,
		})
	}
	return records
}
