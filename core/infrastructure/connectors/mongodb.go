package connectors

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	mongoOptions "go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/hyperterse/querygate/core/domain"
	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
)

// MongoDBConnector implements the Connector interface for MongoDB
type MongoDBConnector struct {
	client   *mongo.Client
	database string
}

// NewMongoDBConnector creates a new MongoDB connector. The default database
// is the "database" option or the path of the connection string.
func NewMongoDBConnector(connectionString string, options map[string]string) (interfaces.Connector, error) {
	log := logging.New("connector:mongodb")
	log.Debugf("Opening MongoDB connection")

	database := options["database"]
	uriOptions := make(map[string]string, len(options))
	for key, value := range options {
		if key != "database" {
			uriOptions[key] = value
		}
	}

	if strings.HasPrefix(connectionString, "mongodb://") || strings.HasPrefix(connectionString, "mongodb+srv://") {
		parsedURL, err := url.Parse(connectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mongodb connection string: %w", err)
		}
		if database == "" {
			database = strings.TrimPrefix(parsedURL.Path, "/")
		}
		if connectionString, err = appendURLOptions(connectionString, uriOptions); err != nil {
			return nil, fmt.Errorf("failed to parse mongodb connection string: %w", err)
		}
	}

	opts := mongoOptions.Client().ApplyURI(connectionString)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Debugf("Testing connection with ping")
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Debugf("MongoDB connection opened successfully")
	return &MongoDBConnector{client: client, database: database}, nil
}

// NewSession opens a session that starts a driver session on first use
func (m *MongoDBConnector) NewSession() interfaces.Session {
	return &mongoSession{connector: m}
}

// Ping verifies the server is reachable
func (m *MongoDBConnector) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close closes the MongoDB connection
func (m *MongoDBConnector) Close() error {
	if m.client != nil {
		log := logging.New("connector:mongodb")
		log.Debugf("Closing MongoDB connection")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := m.client.Disconnect(ctx)
		if err != nil {
			log.Errorf("Error closing MongoDB connection: %v", err)
		} else {
			log.Debugf("MongoDB connection closed")
		}
		return err
	}
	return nil
}

type mongoSession struct {
	connector *MongoDBConnector
	session   *mongo.Session
}

// Execute runs a MongoDB command given as extended JSON, e.g.
// {"find": "users", "filter": {"team": {{ properties.team }}}}. An optional
// "database" field selects the database.
func (s *mongoSession) Execute(ctx context.Context, expression string, properties map[string]any, caller *domain.Caller) ([]domain.Row, error) {
	statement, err := SubstituteJSON(expression, properties, caller)
	if err != nil {
		return nil, err
	}

	var command bson.D
	if err := bson.UnmarshalExtJSON([]byte(statement), false, &command); err != nil {
		return nil, fmt.Errorf("mongodb statement must be valid JSON: %w", err)
	}

	dbName, command := extractDatabase(command)
	if dbName == "" {
		dbName = s.connector.database
	}
	if dbName == "" {
		return nil, fmt.Errorf("mongodb command must include 'database' field")
	}
	if len(command) == 0 {
		return nil, fmt.Errorf("empty mongodb command")
	}

	if s.session == nil {
		session, err := s.connector.client.StartSession()
		if err != nil {
			return nil, fmt.Errorf("failed to start mongodb session: %w", err)
		}
		s.session = session
	}
	sessCtx := mongo.NewSessionContext(ctx, s.session)

	db := s.connector.client.Database(dbName)

	switch command[0].Key {
	case "find", "aggregate":
		cursor, err := db.RunCommandCursor(sessCtx, command)
		if err != nil {
			return nil, fmt.Errorf("mongodb command failed: %w", err)
		}
		defer cursor.Close(sessCtx)

		results := []domain.Row{}
		for cursor.Next(sessCtx) {
			var doc bson.M
			if err := cursor.Decode(&doc); err != nil {
				return nil, fmt.Errorf("mongodb decode failed: %w", err)
			}
			results = append(results, bsonMToMap(doc))
		}
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("mongodb cursor error: %w", err)
		}
		return results, nil
	}

	var result bson.M
	if err := db.RunCommand(sessCtx, command).Decode(&result); err != nil {
		return nil, fmt.Errorf("mongodb command failed: %w", err)
	}

	clean := make(domain.Row, len(result))
	for k, v := range result {
		if k != "ok" && k != "operationTime" && k != "$clusterTime" && k != "$db" {
			clean[k] = bsonValueToAny(v)
		}
	}
	return []domain.Row{clean}, nil
}

// Release ends the driver session
func (s *mongoSession) Release() {
	if s.session == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.session.EndSession(ctx)
	s.session = nil
}

func extractDatabase(command bson.D) (string, bson.D) {
	out := make(bson.D, 0, len(command))
	var dbName string
	for _, elem := range command {
		if elem.Key == "database" {
			if name, ok := elem.Value.(string); ok {
				dbName = name
				continue
			}
		}
		out = append(out, elem)
	}
	return dbName, out
}

func bsonMToMap(doc bson.M) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = bsonValueToAny(v)
	}
	return out
}

func bsonValueToAny(v any) any {
	switch val := v.(type) {
	case bson.M:
		return bsonMToMap(val)
	case bson.D:
		return bsonDToMap(val)
	case bson.A:
		arr := make([]any, len(val))
		for i, item := range val {
			arr[i] = bsonValueToAny(item)
		}
		return arr
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time()
	case bson.Decimal128:
		return val.String()
	default:
		return v
	}
}

func bsonDToMap(doc bson.D) map[string]any {
	if doc == nil {
		return nil
	}
	out := make(map[string]any, len(doc))
	for _, elem := range doc {
		out[elem.Key] = bsonValueToAny(elem.Value)
	}
	return out
}
