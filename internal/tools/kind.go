package tools

import "fmt"

type Kind int

const (
	Metric Kind = iota
	Logs
	Scaling
	Workload
	Services
	NodeCount
)

var Kinds = []Kind{Metric, Logs, Scaling, Workload, Services, NodeCount}

const (
	MetricToolName    = "GetAWSMetric"
	LogsToolName      = "GetAWSLogs"
	ScalingToolName   = "SuggestScalingAction"
	WorkloadToolName  = "GetCloudWorkloadOverview"
	ServicesToolName  = "ListRunningServices"
	NodeCountToolName = "GetClusterNodeCount"
)

func (k Kind) String() string {
	switch k {
	case Metric:
		return MetricToolName
	case Logs:
		return LogsToolName
	case Scaling:
		return ScalingToolName
	case Workload:
		return WorkloadToolName
	case Services:
		return ServicesToolName
	case NodeCount:
		return NodeCountToolName
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
