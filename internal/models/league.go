package models

// League is one competition the analysis cycle covers
type League struct {
	Code     string         `json:"code"`
	APIID    int            `json:"api_id"`
	Name     string         `json:"name"`
	Timezone string         `json:"timezone"`
	Criteria LeagueCriteria `json:"criteria"`
}

// SeasonRollsOverMidYear reports whether the league runs August to May, so a
// season is named after the year it started in
func (l League) SeasonRollsOverMidYear() bool {
	switch l.APIID {
	case 39, 140, 135, 78, 61, 94, 144, 203:
		return true
	}
	return false
}
