package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ncgr/azulejo/pkg/homology"
)

// getClusterGenes fetches the raw gene rows of one cluster.
func getClusterGenes(ctx context.Context, db *sql.DB, clusterID int) ([]homology.Record, error) {
	stm, err := db.PrepareContext(ctx, `
		SELECT g.gene_id, g.genome_id, g.contig_id, g.start_location, g.strand,
		       g.protein_len, g.cluster_id, g.cluster_size,
		       g.synteny_id, g.synteny_count, g.reason
		FROM genes g
		WHERE g.cluster_id == ?
		ORDER BY g.genome_id, g.gene_id`)
	if err != nil {
		return nil, err
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx, clusterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []homology.Record
	for rows.Next() {
		var r homology.Record
		var syntenyID string
		if err := rows.Scan(
			&r.ID, &r.Stem, &r.SeqID, &r.Start, &r.Strand,
			&r.ProteinLen, &r.ClusterID, &r.ClusterSize,
			&syntenyID, &r.SyntenyCount, &r.Reason); err != nil {
			return nil, fmt.Errorf("scanning cluster %d row: %w", clusterID, err)
		}
		r.SyntenyID, _ = strconv.ParseUint(syntenyID, 10, 64)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetCluster returns one cluster's genes grouped per genome.
func (s *Store) GetCluster(ctx context.Context, clusterID int) (map[string][]homology.Record, error) {
	records, err := getClusterGenes(ctx, s.sql, clusterID)
	if err != nil {
		return nil, err
	}
	genomes := make(map[string][]homology.Record)
	for _, r := range records {
		genomes[r.Stem] = append(genomes[r.Stem], r)
	}
	return genomes, nil
}

// ClusterSizes returns the cluster-size table.
func (s *Store) ClusterSizes(ctx context.Context) (map[int]int, error) {
	rows, err := s.sql.QueryContext(ctx, `SELECT cluster_id, size FROM gene_clusters`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sizes := make(map[int]int)
	for rows.Next() {
		var clusterID, size int
		if err := rows.Scan(&clusterID, &size); err != nil {
			return nil, err
		}
		sizes[clusterID] = size
	}
	return sizes, rows.Err()
}
