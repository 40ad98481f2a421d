package ingest

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/hrygo/sixdegrees/store"
)

// hamObject is the subset of a Harvard Art Museums object record we read.
type hamObject struct {
	ObjectID        *int64  `json:"objectid"`
	DisplayTitle    string  `json:"displaytitle"`
	Title           string  `json:"title"`
	DisplayDate     string  `json:"displaydate"`
	Dated           string  `json:"dated"`
	Medium          string  `json:"medium"`
	Department      string  `json:"department"`
	Culture         string  `json:"culture"`
	Classification  string  `json:"classification"`
	PrimaryImageURL string  `json:"primaryimageurl"`
	Makers          []struct {
		DisplayName string `json:"displayname"`
		MakerID     int64  `json:"makerid"`
		PersonID    int64  `json:"personid"`
		Culture     string `json:"culture"`
	} `json:"makers"`
	Classifications []struct {
		Classification string `json:"classification"`
	} `json:"classifications"`
	Media []struct {
		URI string `json:"uri"`
	} `json:"media"`
}

var errMissingObjectID = errors.New("record has no objectid")

// parseObject maps one JSON object record to an artifact. Only the first maker,
// classification and media entry are used.
func parseObject(data []byte) (*store.Artifact, error) {
	var obj hamObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj.ObjectID == nil {
		return nil, errMissingObjectID
	}

	a := &store.Artifact{
		ID:         *obj.ObjectID,
		Title:      firstNonEmpty(obj.DisplayTitle, obj.Title, "Untitled"),
		Date:       firstNonEmpty(obj.DisplayDate, obj.Dated),
		Medium:     strings.TrimSpace(obj.Medium),
		Department: strings.TrimSpace(obj.Department),
	}
	if len(obj.Makers) > 0 {
		m := obj.Makers[0]
		a.Maker = strings.TrimSpace(m.DisplayName)
		a.MakerID = m.MakerID
		if a.MakerID == 0 {
			a.MakerID = m.PersonID
		}
		a.MakerCulture = m.Culture
	}
	if a.MakerCulture == "" {
		a.MakerCulture = obj.Culture
	}

	if len(obj.Classifications) > 0 {
		a.Classification = strings.TrimSpace(obj.Classifications[0].Classification)
	}
	if a.Classification == "" {
		a.Classification = strings.TrimSpace(obj.Classification)
	}

	if len(obj.Media) > 0 && obj.Media[0].URI != "" {
		a.ImageURL = obj.Media[0].URI
	} else {
		a.ImageURL = obj.PrimaryImageURL
	}
	return a, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
