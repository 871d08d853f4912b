package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4jConfig holds connection settings for the graph database backend
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
	Database string
	Timeout  time.Duration
}

// Neo4jStore keeps the knowledge graph in Neo4j:
//
//	(:Container {root, path, name})-[:IN]->(:Container)
//	(:Note {root, ref, name, body})-[:IN]->(:Container)
//
// Every node carries the output root it belongs to, so several vaults can
// share one database. All writes go through MERGE.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	root     string
	logger   *zap.Logger
}

// NewNeo4jStore connects to Neo4j and verifies connectivity
func NewNeo4jStore(ctx context.Context, cfg Neo4jConfig, root string, logger *zap.Logger) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.User, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", cfg.URI, err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("connected to neo4j", zap.String("uri", cfg.URI), zap.String("root", root))

	return &Neo4jStore{driver: driver, database: cfg.Database, root: root, logger: logger}, nil
}

// Close releases the driver
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

// Exists reports whether the note node exists
func (s *Neo4jStore) Exists(ctx context.Context, ref Ref) (bool, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (n:Note {root: $root, ref: $ref})
		RETURN count(n) AS c
	`, map[string]interface{}{
		"root": s.root,
		"ref":  ref.String(),
	})
	if err != nil {
		return false, wrapErr("exists", ref.String(), err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return false, wrapErr("exists", ref.String(), err)
	}
	c, _ := record.Get("c")
	n, _ := c.(int64)
	return n > 0, nil
}

// Create merges the container node and every ancestor, linked by IN
func (s *Neo4jStore) Create(ctx context.Context, dir Path) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, mergeContainers(ctx, tx, s.root, dir)
	})
	return wrapErr("create", dir.String(), err)
}

func mergeContainers(ctx context.Context, tx neo4j.ManagedTransaction, root string, dir Path) error {
	if _, err := tx.Run(ctx, `
		MERGE (c:Container {root: $root, path: ""})
		ON CREATE SET c.name = ""
	`, map[string]interface{}{"root": root}); err != nil {
		return err
	}

	for i := 1; i <= len(dir); i++ {
		_, err := tx.Run(ctx, `
			MATCH (p:Container {root: $root, path: $parent})
			MERGE (c:Container {root: $root, path: $path})
			ON CREATE SET c.name = $name
			MERGE (c)-[:IN]->(p)
		`, map[string]interface{}{
			"root":   root,
			"parent": dir[:i-1].String(),
			"path":   dir[:i].String(),
			"name":   dir[i-1],
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadBody returns the note body, "" when missing
func (s *Neo4jStore) ReadBody(ctx context.Context, ref Ref) (string, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (n:Note {root: $root, ref: $ref})
		RETURN n.body AS body
	`, map[string]interface{}{
		"root": s.root,
		"ref":  ref.String(),
	})
	if err != nil {
		return "", wrapErr("read", ref.String(), err)
	}

	if !result.Next(ctx) {
		return "", wrapErr("read", ref.String(), result.Err())
	}
	body, _ := result.Record().Get("body")
	text, _ := body.(string)
	return text, nil
}

// AppendLine appends to the note body, merging the note into its container
func (s *Neo4jStore) AppendLine(ctx context.Context, ref Ref, line string) error {
	return s.writeNote(ctx, "append", ref, `
		MERGE (n:Note {root: $root, ref: $ref})
		ON CREATE SET n.name = $name, n.body = ""
		SET n.body = n.body + $text
		WITH n
		MATCH (c:Container {root: $root, path: $dir})
		MERGE (n)-[:IN]->(c)
	`, line+"\n")
}

// WriteBody replaces the note body
func (s *Neo4jStore) WriteBody(ctx context.Context, ref Ref, content string) error {
	return s.writeNote(ctx, "write", ref, `
		MERGE (n:Note {root: $root, ref: $ref})
		ON CREATE SET n.name = $name
		SET n.body = $text
		WITH n
		MATCH (c:Container {root: $root, path: $dir})
		MERGE (n)-[:IN]->(c)
	`, content)
}

func (s *Neo4jStore) writeNote(ctx context.Context, op string, ref Ref, query, text string) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := mergeContainers(ctx, tx, s.root, ref.Dir); err != nil {
			return nil, err
		}
		_, err := tx.Run(ctx, query, map[string]interface{}{
			"root": s.root,
			"ref":  ref.String(),
			"name": ref.Name,
			"dir":  ref.Dir.String(),
			"text": text,
		})
		return nil, err
	})
	if err != nil {
		s.logger.Debug("neo4j write failed", zap.String("op", op), zap.String("ref", ref.String()), zap.Error(err))
	}
	return wrapErr(op, ref.String(), err)
}
