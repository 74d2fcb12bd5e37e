package matching

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"

    "github.com/aws/aws-sdk-go/aws"
    "github.com/aws/aws-sdk-go/aws/session"
    "github.com/aws/aws-sdk-go/service/s3"
)

// s3RunArchiver writes the full run envelope to S3 as JSON, one object per
// run, so every assignment stays auditable after the database rows expire.
type s3RunArchiver struct {
    s3Client *s3.S3
    bucket   string
}

func NewS3RunArchiver(awsSession *session.Session, bucket string) RunArchiver {
    return &s3RunArchiver{
        s3Client: s3.New(awsSession),
        bucket:   bucket,
    }
}

func (a *s3RunArchiver) ArchiveRun(ctx context.Context, results *MatchingResults) error {
    payload, err := json.MarshalIndent(results, "", "  ")
    if err != nil {
        return fmt.Errorf("failed to encode run %s: %w", results.RunID, err)
    }

    key := fmt.Sprintf("matching-runs/%s/%s.json", results.Week, results.RunID)
    _, err = a.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
        Bucket:      aws.String(a.bucket),
        Key:         aws.String(key),
        Body:        bytes.NewReader(payload),
        ContentType: aws.String("application/json"),
    })
    if err != nil {
        return fmt.Errorf("failed to upload run archive %s: %w", key, err)
    }

    return nil
}
