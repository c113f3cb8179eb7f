package telemetry

import "strings"

type backend string
type backendOptions []backend

func (option backend) Match(input string) bool {
	return strings.ToUpper(input) == string(option)
}

func (options backendOptions) Includes(input string) bool {
	for _, b := range options {
		if b.Match(input) {
			return true
		}
	}
	return false
}

const (
	MOCK       backend = "MOCK"
	CLOUDWATCH backend = "CLOUDWATCH"
	DATADOG    backend = "DATADOG"
)

var ValidBackends backendOptions = backendOptions{
	MOCK,       // mock HTTP API, see the mock-api command
	CLOUDWATCH, // AWS CloudWatch metrics and CloudWatch Logs
	DATADOG,    // Datadog metrics and logs
}
