package request

type TraverseRequest struct {
	URL string `json:"url"`
}
