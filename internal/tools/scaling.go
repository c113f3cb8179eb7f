package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const scalingDescription = "Suggests a scaling action for a service based on a metric reading and returns " +
	"a CLI script template for it. Requires service_name, service_type, metric_name and current_metric_value."

type ScalingTarget int

const (
	TargetOther ScalingTarget = iota
	TargetAutoScalingGroup
	TargetECSService
)

// Rules are checked in order and the first match wins.
var scalingRules = []struct {
	target  ScalingTarget
	matches []string
}{
	{TargetAutoScalingGroup, []string{"AUTOSCALINGGROUP", "ASG"}},
	{TargetECSService, []string{"ECS SERVICE"}},
}

func ClassifyServiceType(serviceType string) ScalingTarget {
	upper := strings.ToUpper(serviceType)
	for _, r := range scalingRules {
		for _, m := range r.matches {
			if strings.Contains(upper, m) {
				return r.target
			}
		}
	}
	return TargetOther
}

const defaultECSCluster = "your-ecs-cluster"

// MetricReading keeps the reading as the caller wrote it. Numbers and
// strings are both accepted.
type MetricReading string

func (m *MetricReading) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*m = MetricReading(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("current_metric_value must be a number or string: %w", err)
	}
	*m = MetricReading(s)
	return nil
}

type ScalingArgs struct {
	ServiceName        string        `json:"service_name" jsonschema:"required" jsonschema_description:"The service, Auto Scaling Group or cluster/service to scale."`
	ServiceType        string        `json:"service_type" jsonschema:"required" jsonschema_description:"The kind of resource, e.g. 'EC2 AutoScalingGroup' or 'ECS Service'."`
	MetricName         string        `json:"metric_name" jsonschema:"required" jsonschema_description:"The metric that motivated the suggestion, e.g. 'CPUUtilization'."`
	CurrentMetricValue MetricReading `json:"current_metric_value" jsonschema:"required" jsonschema_description:"The current value of that metric, e.g. '92%'."`
}

type ScalingSuggestion struct {
	SuggestionText   string `json:"suggestion_text"`
	ScriptSuggestion string `json:"script_suggestion"`
}

func suggestScaling(_ context.Context, in ScalingArgs) Result {
	var b strings.Builder
	fmt.Fprintf(&b, "# Suggested action for scaling %s '%s' due to high %s (%s):\n",
		in.ServiceType, in.ServiceName, in.MetricName, in.CurrentMetricValue)

	switch ClassifyServiceType(in.ServiceType) {
	case TargetAutoScalingGroup:
		fmt.Fprintf(&b, "aws autoscaling set-desired-capacity --auto-scaling-group-name %q --desired-capacity NEW_DESIRED_VALUE\n", in.ServiceName)
		fmt.Fprintf(&b, "# Replace NEW_DESIRED_VALUE. Check current: aws autoscaling describe-auto-scaling-groups --auto-scaling-group-names %q --query \"AutoScalingGroups[0].DesiredCapacity\"", in.ServiceName)
	case TargetECSService:
		cluster, service := defaultECSCluster, in.ServiceName
		if c, s, ok := strings.Cut(in.ServiceName, "/"); ok && !strings.Contains(s, "/") {
			cluster, service = c, s
		}
		fmt.Fprintf(&b, "aws ecs update-service --cluster %q --service %q --desired-count NEW_DESIRED_COUNT\n", cluster, service)
		fmt.Fprintf(&b, "# Replace NEW_DESIRED_COUNT. Check current: aws ecs describe-services --cluster %q --services %q --query \"services[0].desiredCount\"", cluster, service)
	default:
		fmt.Fprintf(&b, "# Specific CLI/Boto3 script for scaling '%s' (type: %s) needs to be developed.", in.ServiceName, in.ServiceType)
	}

	return Success(ScalingSuggestion{
		SuggestionText:   fmt.Sprintf("High %s (%s) on %s (%s). Consider scaling up.", in.MetricName, in.CurrentMetricValue, in.ServiceName, in.ServiceType),
		ScriptSuggestion: b.String(),
	})
}
