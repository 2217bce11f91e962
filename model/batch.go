// SPDX-License-Identifier: GPL-2.0-or-later

package model

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// LoadAll gets names through c using at most workers concurrent loads.
// It stops at the first error. The result is in the order of names.
func LoadAll(ctx context.Context, c *Cache, names []string, workers int) ([]Model, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	models := make([]Model, len(names))
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := c.Get(name)
			if err != nil {
				return err
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}
