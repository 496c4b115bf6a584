package profile

import (
	"context"
	"errors"
	"fmt"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"ResuMatch/internal/database/neo4j"
	"ResuMatch/internal/models"
)

// Graph mirrors extracted profiles into a Neo4j skill graph so candidates
// can be looked up by the skills they list.
type Graph struct {
	client *neo4j.Client
}

// NewGraph returns a skill graph backed by the given client.
func NewGraph(client *neo4j.Client) (*Graph, error) {
	if client == nil {
		return nil, errors.New("neo4j client is not initialized")
	}
	return &Graph{client: client}, nil
}

// UpsertCandidate merges the candidate node and one HAS_SKILL edge per skill.
// Candidate nodes for the same filename under an older record id are removed
// first, matching how re-indexing replaces the stored document.
func (g *Graph) UpsertCandidate(ctx context.Context, recordID, filename string, p Profile) error {
	skills := make([]interface{}, len(p.Skills))
	for i, s := range p.Skills {
		skills[i] = s
	}

	_, err := g.client.ExecuteWrite(ctx, func(tx neo4jdriver.ManagedTransaction) (interface{}, error) {
		stale := `
		MATCH (c:Candidate {filename: $filename})
		WHERE c.record_id <> $record_id
		DETACH DELETE c
		`
		if _, err := tx.Run(ctx, stale, map[string]interface{}{
			"filename":  filename,
			"record_id": recordID,
		}); err != nil {
			return nil, err
		}

		merge := `
		MERGE (c:Candidate {record_id: $record_id})
		SET c.filename = $filename, c.name = $name, c.experience = $experience
		WITH c
		UNWIND $skills AS skill
		MERGE (s:Skill {name: skill})
		MERGE (c)-[:HAS_SKILL]->(s)
		`
		if _, err := tx.Run(ctx, merge, map[string]interface{}{
			"record_id":  recordID,
			"filename":   filename,
			"name":       p.Name,
			"experience": p.Experience,
			"skills":     skills,
		}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to upsert candidate %s in skill graph: %w", recordID, err)
	}
	return nil
}

// CandidatesBySkill returns the cataloged candidates holding the given skill.
// The lookup is case-insensitive over the stored skill names.
func (g *Graph) CandidatesBySkill(ctx context.Context, skill string) ([]models.CandidateRef, error) {
	result, err := g.client.ExecuteRead(ctx, func(tx neo4jdriver.ManagedTransaction) (interface{}, error) {
		query := `
		MATCH (c:Candidate)-[:HAS_SKILL]->(s:Skill)
		WHERE toLower(s.name) = toLower($skill)
		RETURN c.record_id AS record_id, c.filename AS filename, c.name AS name
		ORDER BY c.filename
		`
		cursor, err := tx.Run(ctx, query, map[string]interface{}{"skill": skill})
		if err != nil {
			return nil, err
		}

		var refs []models.CandidateRef
		for cursor.Next(ctx) {
			record := cursor.Record()
			refs = append(refs, models.CandidateRef{
				RecordID: stringValue(record, "record_id"),
				Filename: stringValue(record, "filename"),
				Name:     stringValue(record, "name"),
			})
		}
		return refs, cursor.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates by skill %q: %w", skill, err)
	}

	refs, _ := result.([]models.CandidateRef)
	return refs, nil
}

func stringValue(record *neo4jdriver.Record, key string) string {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return ""
	}
	s, _ := value.(string)
	return s
}
