package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

const (
	teamsCollection  = "teams"
	groupsCollection = "groups"
	publicPrivacy    = "Public"
)

type teamDoc struct {
	ID          any      `bson:"_id"`
	Name        string   `bson:"name"`
	Description string   `bson:"description"`
	Category    string   `bson:"category"`
	Leaders     []string `bson:"leaders"`
}

type groupDoc struct {
	ID          any    `bson:"_id"`
	Name        string `bson:"name"`
	Description string `bson:"description"`
	Privacy     string `bson:"privacy"`
	MeetingDay  string `bson:"meeting_day"`
	Location    string `bson:"location"`
}

// ConnectClient reads teams and groups from the connect service's MongoDB,
// one database per tenant.
type ConnectClient struct {
	client *mongo.Client
	env    string
	policy RetryPolicy
	log    *logger.Logger
}

// NewMongoClient connects and pings. uri is a standard mongodb:// URI.
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetRetryReads(true)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewConnectClient takes the deployment environment; anything other than
// "prod" reads the dev databases.
func NewConnectClient(client *mongo.Client, environment string, policy RetryPolicy, baseLog *logger.Logger) *ConnectClient {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &ConnectClient{client: client, env: environment, policy: policy, log: baseLog.With("service", "ConnectClient")}
}

func connectDatabaseName(environment string, tenant domain.TenantRef) string {
	env := "dev"
	if strings.EqualFold(strings.TrimSpace(environment), "prod") {
		env = "prod"
	}
	return fmt.Sprintf("vecapp_%s_%s", env, tenant.Identifier)
}

func findAll[T any](ctx context.Context, c *ConnectClient, tenant domain.TenantRef, coll string, filter bson.M) ([]T, error) {
	if tenant.IsZero() {
		return nil, domain.NewValidationError("tenant", "tenant is required")
	}
	db := c.client.Database(connectDatabaseName(c.env, tenant))
	return withRetry(ctx, c.policy, c.log, "find_"+coll, func(ctx context.Context) ([]T, error) {
		cur, err := db.Collection(coll).Find(ctx, filter)
		if err != nil {
			return nil, err
		}
		var docs []T
		if err := cur.All(ctx, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	})
}

func (c *ConnectClient) GetPublicTeams(ctx context.Context, tenant domain.TenantRef) ([]domain.Team, error) {
	docs, err := findAll[teamDoc](ctx, c, tenant, teamsCollection, bson.M{})
	if err != nil {
		return []domain.Team{}, fmt.Errorf("get teams: %w", err)
	}
	out := make([]domain.Team, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Team{
			ID:          docID(d.ID),
			Name:        d.Name,
			Description: d.Description,
			Category:    d.Category,
			Leaders:     d.Leaders,
		})
	}
	return out, nil
}

func (c *ConnectClient) GetPublicGroups(ctx context.Context, tenant domain.TenantRef) ([]domain.Group, error) {
	docs, err := findAll[groupDoc](ctx, c, tenant, groupsCollection, bson.M{"privacy": publicPrivacy})
	if err != nil {
		return []domain.Group{}, fmt.Errorf("get public groups: %w", err)
	}
	out := make([]domain.Group, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Group{
			ID:          docID(d.ID),
			Name:        d.Name,
			Description: d.Description,
			Privacy:     d.Privacy,
			MeetingDay:  d.MeetingDay,
			Location:    d.Location,
		})
	}
	return out, nil
}

func docID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case primitive.Binary:
		return fmt.Sprintf("%x", id.Data)
	default:
		return fmt.Sprint(id)
	}
}
