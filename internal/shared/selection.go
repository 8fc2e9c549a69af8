package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/leocov-dev/mrbulk/core"
)

// QueuePackage resolves a compatible version for pkg and records it in the store.
// Packages without a compatible version stay in the store as pending.
func QueuePackage(ctx context.Context, resolver *core.Resolver, store *core.SelectionStore, pkg core.PackageSummary, opts core.ResolveOptions, pick bool) error {
	opts.Rank = true
	versions, err := resolver.Resolve(ctx, pkg.ID, opts)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		if !store.Contains(pkg.ID) {
			store.Toggle(pkg)
		}
		fmt.Printf("No compatible version of %s for %s; it stays pending\n", pkg.DisplayName(), opts.GameVersion)
		return nil
	}

	var version core.PackageVersion
	if pick {
		version, err = PickVersion(pkg, versions)
		if err != nil {
			return err
		}
	} else {
		version = core.NewestVersion(versions)
	}

	store.AssignVersion(pkg, version)
	logrus.WithFields(logrus.Fields{"package": pkg.ID, "version": version.Number}).Debug("queued")
	fmt.Printf("Queued %s %s\n", pkg.DisplayName(), version.Number)
	return nil
}

// QueuePackages looks up each id or slug and queues it; failures are reported per package
func QueuePackages(ctx context.Context, registry core.Registry, store *core.SelectionStore, ids []string, opts core.ResolveOptions, pick bool) error {
	resolver := core.NewResolver(registry)
	var errs []error
	for _, id := range ids {
		pkg, err := registry.GetPackage(ctx, id)
		if err != nil {
			fmt.Printf("Failed to look up %s: %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		if err := QueuePackage(ctx, resolver, store, pkg, opts, pick); err != nil {
			if errors.Is(err, ErrCancelled) {
				return err
			}
			fmt.Printf("Failed to resolve %s: %v\n", pkg.DisplayName(), err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
