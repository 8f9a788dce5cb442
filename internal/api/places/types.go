package places

// API statuses returned in the "status" field of every Maps web-service response.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
	StatusNotFound    = "NOT_FOUND"
)

const businessStatusClosedPermanently = "CLOSED_PERMANENTLY"

// detailsFields is the field mask requested from Place Details.
const detailsFields = "name,formatted_address,rating,user_ratings_total,photos,place_id,permanently_closed,business_status"

type apiEnvelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
	Height         int    `json:"height"`
	Width          int    `json:"width"`
}

type placeDetailsResult struct {
	Name              *string  `json:"name"`
	FormattedAddress  *string  `json:"formatted_address"`
	Rating            *float64 `json:"rating"`
	UserRatingsTotal  *int     `json:"user_ratings_total"`
	Photos            []photo  `json:"photos"`
	PlaceID           *string  `json:"place_id"`
	PermanentlyClosed bool     `json:"permanently_closed"`
	BusinessStatus    string   `json:"business_status"`
}

type placeDetailsResponse struct {
	apiEnvelope
	Result *placeDetailsResult `json:"result"`
}

type findPlaceCandidate struct {
	PlaceID string `json:"place_id"`
}

type findPlaceResponse struct {
	apiEnvelope
	Candidates []findPlaceCandidate `json:"candidates"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
}

type geocodeResponse struct {
	apiEnvelope
	Results []geocodeResult `json:"results"`
}

func (c addressComponent) hasType(t string) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}
