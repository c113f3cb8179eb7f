package inventory

import (
	"fmt"
	"strings"
)

type RunningService struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	AppGroup string `json:"app_group"`
}

var Running = []RunningService{
	{"ec2-instance-A", "EC2", "Analytics"},
	{"ecs-service-X", "ECS", "OrderProcessing"},
	{"lambda-function-Y", "Lambda", "UserAuth"},
	{"billing-lambda-processor", "Lambda", "Billing"},
	{"rds-database-Z", "RDS", "OrderProcessing"},
	{"high-load-service-asg", "EC2 AutoScalingGroup", "Generic"},
}

const NoServicesText = "No specific services found matching your criteria with mock data. " +
	"Key services include ec2-instance-A (EC2), ecs-service-X (ECS), and lambda-function-Y (Lambda)."

// FilterRunning matches typeFilter against the service type and nameFilter
// against the name or application group, both as case-insensitive substrings.
// Empty filters match everything.
func FilterRunning(typeFilter, nameFilter string) []RunningService {
	typeFilter = strings.ToLower(typeFilter)
	nameFilter = strings.ToLower(nameFilter)

	out := make([]RunningService, 0, len(Running))
	for _, s := range Running {
		if typeFilter != "" && !strings.Contains(strings.ToLower(s.Type), typeFilter) {
			continue
		}
		if nameFilter != "" &&
			!strings.Contains(strings.ToLower(s.Name), nameFilter) &&
			!strings.Contains(strings.ToLower(s.AppGroup), nameFilter) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func DescribeRunning(services []RunningService) string {
	parts := make([]string, len(services))
	for i, s := range services {
		parts[i] = fmt.Sprintf("%s (%s)", s.Name, s.Type)
	}
	return fmt.Sprintf("Currently running services (mock data) matching your query: %s.", strings.Join(parts, ", "))
}

type Application struct {
	Name              string   `json:"name"`
	Type              string   `json:"type"`
	Status            string   `json:"status"`
	PrimaryComponents []string `json:"primary_components"`
}

var KeyApplications = []Application{
	{"OrderProcessingSystem", "ECS", "Healthy", []string{"ecs-service-X", "rds-database-Z"}},
	{"UserAuthentication", "Lambda", "Healthy", []string{"lambda-function-Y"}},
	{"DataAnalyticsPlatform", "EC2", "Warning (High CPU on ec2-instance-A)", []string{"ec2-instance-A", "spiky-service"}},
}

const WorkloadSummary = "Currently, our key workloads include Order Processing, User Authentication, and Data Analytics. " +
	"Most systems are healthy, but the Data Analytics platform shows high CPU on one of its EC2 instances."

// Overview returns the canned workload summary. The filter is acknowledged
// in the text but does not narrow the content.
func Overview(filter string) string {
	if filter != "" {
		return fmt.Sprintf("For criteria '%s', I'd normally show specific details. For now, here's a general overview: %s (This is mock data).", filter, WorkloadSummary)
	}
	return WorkloadSummary + " (This is mock data). You can ask for details on specific applications mentioned."
}
