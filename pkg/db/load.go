package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ncgr/azulejo/pkg/homology"
)

// LoadClusters replaces the cluster-size rows.
func (s *Store) LoadClusters(ctx context.Context, sizes map[int]int) error {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stm, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO gene_clusters (cluster_id, size) VALUES (?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stm.Close()
	for clusterID, size := range sizes {
		if _, err := stm.ExecContext(ctx, clusterID, size); err != nil {
			tx.Rollback()
			return fmt.Errorf("load cluster %d: %w", clusterID, err)
		}
	}
	return tx.Commit()
}

// LoadGenes inserts (or replaces) one row per record, carrying whatever
// synteny and proxy annotation the records have at this point.
func (s *Store) LoadGenes(ctx context.Context, records []homology.Record) error {
	tx, err := s.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stm, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO genes
			(gene_id, genome_id, contig_id, start_location, strand,
			 protein_len, cluster_id, cluster_size,
			 synteny_id, synteny_count, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stm.Close()
	for _, r := range records {
		_, err := stm.ExecContext(ctx,
			r.ID, r.Stem, r.SeqID, r.Start, r.Strand,
			r.ProteinLen, r.ClusterID, r.ClusterSize,
			strconv.FormatUint(r.SyntenyID, 10), r.SyntenyCount, r.Reason)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("load gene %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
