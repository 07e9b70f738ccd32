package dto

type PaisResponse struct {
	ID      int64  `json:"id"`
	Country string `json:"country"`
}

// SeleccionarPaisRequest accepts the id as countryId (what the frontend sends)
// or country_id.
type SeleccionarPaisRequest struct {
	CountryID      *ID `json:"countryId"  swaggertype:"integer"`
	CountryIDSnake *ID `json:"country_id" swaggertype:"integer"`
}

// ID returns the requested country id, or 0 when none was sent.
func (r SeleccionarPaisRequest) ID() int64 {
	switch {
	case r.CountryID != nil:
		return int64(*r.CountryID)
	case r.CountryIDSnake != nil:
		return int64(*r.CountryIDSnake)
	default:
		return 0
	}
}
