package firewall

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsec2 "github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	apperrors "github.com/ksyq12/sgrenew/internal/errors"
	"github.com/ksyq12/sgrenew/internal/logger"
)

// EC2 error codes treated as success.
const (
	codeDuplicate = "InvalidPermission.Duplicate"
	codeNotFound  = "InvalidPermission.NotFound"
	codeDryRun    = "DryRunOperation"
)

// EC2API is the subset of the EC2 client used by EC2Manager.
type EC2API interface {
	AuthorizeSecurityGroupIngress(ctx context.Context, params *awsec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*awsec2.Options)) (*awsec2.AuthorizeSecurityGroupIngressOutput, error)
	RevokeSecurityGroupIngress(ctx context.Context, params *awsec2.RevokeSecurityGroupIngressInput, optFns ...func(*awsec2.Options)) (*awsec2.RevokeSecurityGroupIngressOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *awsec2.DescribeSecurityGroupsInput, optFns ...func(*awsec2.Options)) (*awsec2.DescribeSecurityGroupsOutput, error)
}

// EC2Manager implements Manager against EC2 security groups.
type EC2Manager struct {
	client EC2API
	dryRun bool
}

// NewEC2Manager creates a manager from an AWS config.
// With dryRun set, requests only check permissions and change nothing.
func NewEC2Manager(cfg aws.Config, dryRun bool) *EC2Manager {
	return NewEC2ManagerWithClient(awsec2.NewFromConfig(cfg), dryRun)
}

// NewEC2ManagerWithClient creates a manager around an existing client.
func NewEC2ManagerWithClient(client EC2API, dryRun bool) *EC2Manager {
	return &EC2Manager{client: client, dryRun: dryRun}
}

// AddIngressRule authorizes rule on its security group.
func (m *EC2Manager) AddIngressRule(ctx context.Context, rule Rule) error {
	output, err := m.client.AuthorizeSecurityGroupIngress(ctx, &awsec2.AuthorizeSecurityGroupIngressInput{
		DryRun:     aws.Bool(m.dryRun),
		GroupId:    aws.String(rule.GroupID),
		IpProtocol: aws.String(rule.Protocol),
		FromPort:   aws.Int32(rule.Port),
		ToPort:     aws.Int32(rule.Port),
		CidrIp:     aws.String(rule.CIDR),
	})
	if err != nil {
		switch apiErrorCode(err) {
		case codeDuplicate:
			logger.WarnFields("Ingress rule already present", ruleFields(rule))
			return nil
		case codeDryRun:
			logger.Info("add ingress response: dry run, request would have succeeded")
			return nil
		}
		return apperrors.Wrap(apperrors.ErrCodeFirewall, fmt.Sprintf("failed to authorize ingress %s", rule), err)
	}

	logger.Info("add ingress response: %s", describeAuthorize(output))
	return nil
}

// RemoveIngressRule revokes the identical rule tuple.
func (m *EC2Manager) RemoveIngressRule(ctx context.Context, rule Rule) error {
	output, err := m.client.RevokeSecurityGroupIngress(ctx, &awsec2.RevokeSecurityGroupIngressInput{
		DryRun:     aws.Bool(m.dryRun),
		GroupId:    aws.String(rule.GroupID),
		IpProtocol: aws.String(rule.Protocol),
		FromPort:   aws.Int32(rule.Port),
		ToPort:     aws.Int32(rule.Port),
		CidrIp:     aws.String(rule.CIDR),
	})
	if err != nil {
		switch apiErrorCode(err) {
		case codeNotFound:
			logger.WarnFields("Ingress rule already absent", ruleFields(rule))
			return nil
		case codeDryRun:
			logger.Info("remove ingress response: dry run, request would have succeeded")
			return nil
		}
		return apperrors.Wrap(apperrors.ErrCodeFirewall, fmt.Sprintf("failed to revoke ingress %s", rule), err)
	}

	if len(output.UnknownIpPermissions) > 0 {
		logger.WarnFields("Ingress rule already absent", ruleFields(rule))
	}
	logger.Info("remove ingress response: %s", describeRevoke(output))
	return nil
}

// apiErrorCode extracts the AWS error code from an error, or "".
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func ruleFields(rule Rule) map[string]interface{} {
	return map[string]interface{}{
		"group":    rule.GroupID,
		"cidr":     rule.CIDR,
		"port":     rule.Port,
		"protocol": rule.Protocol,
	}
}

func describeAuthorize(out *awsec2.AuthorizeSecurityGroupIngressOutput) string {
	if out == nil {
		return "<nil>"
	}
	ids := make([]string, 0, len(out.SecurityGroupRules))
	for _, r := range out.SecurityGroupRules {
		ids = append(ids, aws.ToString(r.SecurityGroupRuleId))
	}
	return fmt.Sprintf("Return=%t SecurityGroupRules=[%s]", aws.ToBool(out.Return), strings.Join(ids, ","))
}

func describeRevoke(out *awsec2.RevokeSecurityGroupIngressOutput) string {
	if out == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Return=%t UnknownIpPermissions=%d", aws.ToBool(out.Return), len(out.UnknownIpPermissions))
}

// HasIngressRule reports whether rule is currently present on its group.
// Used to detect a verification port left open by an interrupted run.
func (m *EC2Manager) HasIngressRule(ctx context.Context, rule Rule) (bool, error) {
	output, err := m.client.DescribeSecurityGroups(ctx, &awsec2.DescribeSecurityGroupsInput{
		GroupIds: []string{rule.GroupID},
	})
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrCodeFirewall, fmt.Sprintf("failed to describe security group %s", rule.GroupID), err)
	}

	for _, sg := range output.SecurityGroups {
		for _, perm := range sg.IpPermissions {
			if matchesPermission(perm, rule) {
				return true, nil
			}
		}
	}
	return false, nil
}

func matchesPermission(perm types.IpPermission, rule Rule) bool {
	if aws.ToString(perm.IpProtocol) != rule.Protocol {
		return false
	}
	if aws.ToInt32(perm.FromPort) != rule.Port || aws.ToInt32(perm.ToPort) != rule.Port {
		return false
	}
	for _, r := range perm.IpRanges {
		if aws.ToString(r.CidrIp) == rule.CIDR {
			return true
		}
	}
	return false
}
