package creds

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// ambientAWSCredentials asks the AWS SDK default chain whether usable
// credentials exist, returning the chain source name for diagnostics.
// When the credentials file carries an explicit key pair, that pair is
// checked instead of the ambient chain.
func (r *Resolver) ambientAWSCredentials(ctx context.Context) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, cliTimeout)
	defer cancel()

	opts := []func(*awsconfig.LoadOptions) error{}
	set := r.awsCredentials()
	if region := set["region"]; region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if set["access_key_id"] != "" && set["secret_access_key"] != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(set["access_key_id"], set["secret_access_key"], set["session_token"]),
		))
	} else if profile := set["profile"]; profile != "" && profile != "default" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		r.log.Debug("AWS SDK configuration could not be loaded")
		return "", false
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		r.log.Debug("no AWS credentials found in the default chain")
		return "", false
	}
	return creds.Source, true
}
