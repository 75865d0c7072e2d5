package dto

type PushConnectionsResponse struct {
	Users []string `json:"users"`
	Count int      `json:"count"`
}
