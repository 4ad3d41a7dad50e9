package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/google/uuid"

	"clubgate/pkg/domain"
	"clubgate/pkg/email"
	"clubgate/pkg/platform/sentinel"
)

const roleAttribute = "custom:role"

// CognitoDirectory provisions accounts in a Cognito user pool. The pool
// authenticates members via email OTP, so no password is set here and the
// welcome email is suppressed in favor of our own notification.
type CognitoDirectory struct {
	client *cognitoidentityprovider.Client
	poolID string
}

// NewCognitoDirectory builds a directory for the given pool. The region is
// extracted from the pool ID (format: "region_poolid").
func NewCognitoDirectory(ctx context.Context, poolID string) (*CognitoDirectory, error) {
	region, err := regionFromPoolID(poolID)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &CognitoDirectory{
		client: cognitoidentityprovider.NewFromConfig(awsCfg),
		poolID: poolID,
	}, nil
}

func (d *CognitoDirectory) Create(ctx context.Context, nu NewUser) (*User, error) {
	firstName, lastName := email.DeriveNameFromEmail(nu.Email)
	out, err := d.client.AdminCreateUser(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId:    aws.String(d.poolID),
		Username:      aws.String(nu.Email),
		MessageAction: types.MessageActionTypeSuppress,
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(nu.Email)},
			{Name: aws.String("email_verified"), Value: aws.String("true")},
			{Name: aws.String("preferred_username"), Value: aws.String(nu.Username)},
			{Name: aws.String("given_name"), Value: aws.String(firstName)},
			{Name: aws.String("family_name"), Value: aws.String(lastName)},
			{Name: aws.String(roleAttribute), Value: aws.String(nu.Role.String())},
		},
	})
	if err != nil {
		return nil, mapCognitoError(err)
	}

	return userFromAttributes(out.User.Attributes, out.User.UserCreateDate, nu)
}

func (d *CognitoDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	out, err := d.client.ListUsers(ctx, &cognitoidentityprovider.ListUsersInput{
		UserPoolId: aws.String(d.poolID),
		Filter:     aws.String(fmt.Sprintf("email = %q", email)),
		Limit:      aws.Int32(1),
	})
	if err != nil {
		return nil, mapCognitoError(err)
	}
	if len(out.Users) == 0 {
		return nil, sentinel.ErrNotFound
	}

	u := out.Users[0]
	return userFromAttributes(u.Attributes, u.UserCreateDate, NewUser{Email: email})
}

func (d *CognitoDirectory) SetRole(ctx context.Context, email string, role domain.Role) error {
	_, err := d.client.AdminUpdateUserAttributes(ctx, &cognitoidentityprovider.AdminUpdateUserAttributesInput{
		UserPoolId: aws.String(d.poolID),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String(roleAttribute), Value: aws.String(role.String())},
		},
	})
	return mapCognitoError(err)
}

func (d *CognitoDirectory) Delete(ctx context.Context, email string) error {
	_, err := d.client.AdminDeleteUser(ctx, &cognitoidentityprovider.AdminDeleteUserInput{
		UserPoolId: aws.String(d.poolID),
		Username:   aws.String(email),
	})
	return mapCognitoError(err)
}

func userFromAttributes(attrs []types.AttributeType, created *time.Time, fallback NewUser) (*User, error) {
	user := &User{
		Email:    fallback.Email,
		Username: fallback.Username,
		Role:     fallback.Role,
	}
	if created != nil {
		user.CreatedAt = *created
	}
	for _, attr := range attrs {
		if attr.Name == nil || attr.Value == nil {
			continue
		}
		switch *attr.Name {
		case "sub":
			sub, err := uuid.Parse(*attr.Value)
			if err != nil {
				return nil, fmt.Errorf("parse cognito sub: %w", err)
			}
			user.ID = domain.UserID(sub)
		case "email":
			user.Email = *attr.Value
		case "preferred_username":
			user.Username = *attr.Value
		case roleAttribute:
			if role, err := domain.ParseRole(*attr.Value); err == nil {
				user.Role = role
			}
		}
	}
	return user, nil
}

func mapCognitoError(err error) error {
	if err == nil {
		return nil
	}
	var userExists *types.UsernameExistsException
	if errors.As(err, &userExists) {
		return fmt.Errorf("%w: %v", sentinel.ErrConflict, err)
	}
	var notFound *types.UserNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", sentinel.ErrNotFound, err)
	}
	var throttled *types.TooManyRequestsException
	if errors.As(err, &throttled) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}

func regionFromPoolID(poolID string) (string, error) {
	parts := strings.SplitN(poolID, "_", 2)
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("invalid cognito pool id: %q", poolID)
	}
	return parts[0], nil
}
