package opensubtitles

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// searchRecord mirrors the subset of index fields subfetch uses. The index
// encodes numbers as strings, so numeric fields accept either form.
type searchRecord struct {
	SubFileName     string     `json:"SubFileName"`
	LanguageName    string     `json:"LanguageName"`
	ISO639          string     `json:"ISO639"`
	SubLanguageID   string     `json:"SubLanguageID"`
	SubRating       flexNumber `json:"SubRating"`
	SubDownloadLink string     `json:"SubDownloadLink"`
	MovieName       string     `json:"MovieName"`
	SubFormat       string     `json:"SubFormat"`
	SubDownloadsCnt flexNumber `json:"SubDownloadsCnt"`
}

func (r searchRecord) subtitle() Subtitle {
	tag := strings.TrimSpace(r.ISO639)
	if tag == "" {
		tag = strings.TrimSpace(r.SubLanguageID)
	}
	sub := Subtitle{
		FileName:     strings.TrimSpace(r.SubFileName),
		LanguageName: strings.TrimSpace(r.LanguageName),
		LanguageTag:  tag,
		DownloadLink: strings.TrimSpace(r.SubDownloadLink),
		MovieName:    strings.TrimSpace(r.MovieName),
		Format:       strings.TrimSpace(r.SubFormat),
	}
	if r.SubRating.valid {
		rating := r.SubRating.value
		sub.Rating = &rating
	}
	if r.SubDownloadsCnt.valid {
		sub.Downloads = int64(r.SubDownloadsCnt.value)
	}
	return sub
}

// flexNumber decodes a JSON number or numeric string. Empty, null and
// unparsable values leave it invalid.
type flexNumber struct {
	value float64
	valid bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	*n = flexNumber{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	*n = flexNumber{value: value, valid: true}
	return nil
}
