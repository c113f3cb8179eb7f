// Package inventory holds the static service catalog the assistant resolves
// names against: log groups, monitoring namespaces and the demo workload.
package inventory

import (
	"fmt"
	"strings"
)

type ServiceType string

const (
	TypeEC2     ServiceType = "EC2"
	TypeECS     ServiceType = "ECS"
	TypeLambda  ServiceType = "Lambda"
	TypeRDS     ServiceType = "RDS"
	TypeGeneric ServiceType = "Generic"
)

type Entry struct {
	Type     ServiceType `json:"type"`
	LogGroup string      `json:"log_group"`
}

var Catalog = map[string]Entry{
	"ec2-instance-A":                          {TypeEC2, "/aws/ec2/ec2-instance-A-applogs"},
	"ecs-service-X":                           {TypeECS, "/aws/ecs/ecs-service-X-cluster/ecs-service-X"},
	"lambda-function-Y":                       {TypeLambda, "/aws/lambda/lambda-function-Y"},
	"rds-database-Z":                          {TypeRDS, "/aws/rds/instance/rds-database-Z/error"},
	"high-load-service":                       {TypeGeneric, "/app/high-load-service"},
	"spiky-service":                           {TypeGeneric, "/app/spiky-service"},
	"my-custom-backend-service":               {TypeGeneric, "my-custom-backend-service"},
	"my-ec2-app-prod-logs":                    {TypeEC2, "my-ec2-app-prod-logs"},
	"/aws/lambda/lambda-mock-data":            {TypeLambda, "/aws/lambda/lambda-mock-data"},
	"/aws/lambda/lambda-mock-data/appService": {TypeLambda, "/aws/lambda/lambda-mock-data/appService"},
	"transaction-processor":                   {TypeGeneric, "transaction-processor"},
	"my-generic-app-logs":                     {TypeGeneric, "my-generic-app-logs"},
}

var KnownMetrics = []string{
	"CPUUtilization", "MemoryUtilization", "NetworkIn", "NetworkOut",
	"DiskReadOps", "DiskWriteOps", "DatabaseConnections", "Invocations", "Errors",
}

// LogGroupFor maps a logical service name to a log group. Names that already
// look like a path are used verbatim.
func LogGroupFor(name string) string {
	if e, ok := Catalog[name]; ok {
		return e.LogGroup
	}
	if strings.Contains(name, "/") {
		return name
	}
	return fmt.Sprintf("/app/logs/%s", name)
}

type Dimension struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Target struct {
	Namespace  string      `json:"namespace"`
	Dimensions []Dimension `json:"dimensions"`
	LogGroup   string      `json:"log_group"`
}

const (
	customNamespace   = "Custom/Namespace"
	defaultECSCluster = "default-cluster"
)

// MetricTarget maps a service name onto monitoring namespace and dimension
// vocabulary. Unknown services fall back to a custom namespace keyed by
// ServiceName.
func MetricTarget(name string) Target {
	e, ok := Catalog[name]
	if !ok {
		return Target{
			Namespace:  customNamespace,
			Dimensions: []Dimension{{"ServiceName", name}},
			LogGroup:   LogGroupFor(name),
		}
	}

	t := Target{LogGroup: e.LogGroup}
	switch e.Type {
	case TypeEC2:
		t.Namespace = "AWS/EC2"
		t.Dimensions = []Dimension{{"InstanceId", name}}
	case TypeECS:
		cluster, service := defaultECSCluster, name
		if c, s, found := strings.Cut(name, "/"); found {
			cluster, service = c, s
		}
		t.Namespace = "AWS/ECS"
		t.Dimensions = []Dimension{{"ClusterName", cluster}, {"ServiceName", service}}
	case TypeLambda:
		t.Namespace = "AWS/Lambda"
		t.Dimensions = []Dimension{{"FunctionName", name}}
	case TypeRDS:
		t.Namespace = "AWS/RDS"
		t.Dimensions = []Dimension{{"DBInstanceIdentifier", name}}
	default:
		t.Namespace = customNamespace
		t.Dimensions = []Dimension{{"ServiceName", name}}
	}
	return t
}
