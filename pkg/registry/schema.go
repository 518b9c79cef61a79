// pkg/registry/schema.go
package registry

// ActivityRegistry describes the job workers a BPMN process can call.
type ActivityRegistry struct {
	Version    string     `json:"version"`
	Activities []Activity `json:"activities"`
}

// Activity is the contract of one job worker: the process variables it
// reads and writes and the BPMN error codes it may throw.
type Activity struct {
	TaskType    string   `json:"taskType"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
	ErrorCodes  []string `json:"errorCodes"`
	Retryable   bool     `json:"retryable"`
}
