package provisioning

type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}
