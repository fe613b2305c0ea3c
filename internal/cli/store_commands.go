package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/portflow/pkg/registry"
	"github.com/aretw0/portflow/pkg/schema"
)

// RunStoreList prints the stored network names.
func RunStoreList(ctx context.Context, w io.Writer, opts Options) error {
	backend, err := OpenBackend(opts)
	if err != nil {
		return err
	}
	defer backend.Close()

	names, err := backend.Store.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "No networks stored.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

// RunStoreImport builds the definition at path and stores it under name.
// An empty name falls back to the definition's own name.
func RunStoreImport(ctx context.Context, w io.Writer, opts Options, path, name string) error {
	def, err := schema.LoadFile(path)
	if err != nil {
		return err
	}
	if name == "" {
		name = def.Name
	}

	backend, err := OpenBackend(opts)
	if err != nil {
		return err
	}
	defer backend.Close()

	mgr := backend.Manager(registry.Default(), NewLogger(opts.Debug))
	if _, err := mgr.Import(ctx, name, def); err != nil {
		return err
	}
	fmt.Fprintf(w, "Imported %q (%d processors).\n", name, len(def.Processors))
	return nil
}

// RunStoreExport writes the stored definition in the given format.
func RunStoreExport(ctx context.Context, w io.Writer, opts Options, name string, format schema.Format) error {
	backend, err := OpenBackend(opts)
	if err != nil {
		return err
	}
	defer backend.Close()

	def, err := backend.Store.Load(ctx, name)
	if err != nil {
		return err
	}
	data, err := schema.Marshal(def, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// RunStoreDelete removes a stored network.
func RunStoreDelete(ctx context.Context, w io.Writer, opts Options, name string) error {
	backend, err := OpenBackend(opts)
	if err != nil {
		return err
	}
	defer backend.Close()

	mgr := backend.Manager(registry.Default(), NewLogger(opts.Debug))
	if err := mgr.Delete(ctx, name); err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted %q.\n", name)
	return nil
}
