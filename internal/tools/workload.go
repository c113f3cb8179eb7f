package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/ricardonunez-io/ranger/internal/inventory"
)

const (
	workloadDescription = "Gives a high-level overview of the cloud workloads and key applications and their health."

	servicesDescription = "Lists running services, optionally filtered by service type (e.g. 'EC2', 'Lambda') " +
		"or by an application tag or name prefix."

	nodeCountDescription = "Returns the number of running nodes or instances in a cluster or Auto Scaling Group."
)

const NodeCountClarification = "Please specify the name of the cluster or Auto Scaling Group for which you want the node count."

type WorkloadArgs struct {
	FilterCriteria string `json:"filter_criteria" jsonschema_description:"Optional criteria such as an application name or environment."`
}

type WorkloadOverview struct {
	OverviewText string `json:"overview_text"`
}

func workloadOverview(_ context.Context, in WorkloadArgs) Result {
	return Success(WorkloadOverview{OverviewText: inventory.Overview(strings.TrimSpace(in.FilterCriteria))})
}

type ServicesArgs struct {
	ServiceTypeFilter string `json:"service_type_filter" jsonschema_description:"Optional service type, e.g. 'EC2', 'ECS', 'Lambda' or 'RDS'."`
	AppTagOrPrefix    string `json:"application_tag_or_prefix" jsonschema_description:"Optional application group or service name prefix."`
}

type ServiceListing struct {
	ServicesList []inventory.RunningService `json:"services_list,omitempty"`
	ServicesText string                     `json:"services_text"`
}

func listRunningServices(_ context.Context, in ServicesArgs) Result {
	found := inventory.FilterRunning(strings.TrimSpace(in.ServiceTypeFilter), strings.TrimSpace(in.AppTagOrPrefix))
	if len(found) == 0 {
		return Success(ServiceListing{ServicesText: inventory.NoServicesText})
	}
	return Success(ServiceListing{ServicesList: found, ServicesText: inventory.DescribeRunning(found)})
}

type NodeCountArgs struct {
	ClusterOrASGName string `json:"cluster_or_asg_name" jsonschema_description:"Name of the cluster or Auto Scaling Group."`
}

type NodeCountReply struct {
	NodeCountText string `json:"node_count_text"`
}

// Mocked counts fall in [2, 8].
func (d Deps) clusterNodeCount(_ context.Context, in NodeCountArgs) Result {
	name := strings.TrimSpace(in.ClusterOrASGName)
	if name == "" {
		return Success(NodeCountReply{NodeCountText: NodeCountClarification})
	}
	count := 2 + d.intn(7)
	return Success(NodeCountReply{
		NodeCountText: fmt.Sprintf("Mock: The cluster/ASG '%s' currently has %d running nodes/instances. (This is mock data).", name, count),
	})
}
