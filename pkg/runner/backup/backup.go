package backup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/tabby/pkg/app"
	"tableflip.dev/tabby/pkg/backup"
	"tableflip.dev/tabby/pkg/printers"
)

// Export writes the journal backup into the documents directory.
type Export struct {
	Codec   *backup.Codec
	JSON    bool
	Printer *printers.PrettyPrint
}

func (n *Export) Do(ctx context.Context) error {
	if n.Codec == nil {
		return errors.New("can not export, no codec")
	}
	path, err := n.Codec.ExportAll(ctx)
	if err != nil {
		return err
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if n.JSON {
		return pp.JSON(map[string]string{"path": path})
	}
	_, err = fmt.Fprintf(pp.Writer(), "Exported to %s\n", path)
	return err
}

// Import merges a backup document into the journal.
type Import struct {
	Codec   *backup.Codec
	Service *app.Service
	// Path is read when set, In otherwise.
	Path    string
	In      io.Reader
	JSON    bool
	Printer *printers.PrettyPrint
}

func (n *Import) Do(ctx context.Context) error {
	if n.Codec == nil {
		return errors.New("can not import, no codec")
	}
	var (
		count int
		err   error
	)
	if n.Path != "" {
		count, err = n.Codec.ImportFile(ctx, n.Path)
	} else {
		if n.In == nil {
			return errors.New("can not import, no input")
		}
		count, err = n.Codec.ImportMerge(ctx, n.In)
	}
	if err != nil {
		return err
	}
	if n.Service != nil {
		n.Service.Changed(ctx)
	}

	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	if n.JSON {
		return pp.JSON(map[string]int{"imported": count})
	}
	_, err = fmt.Fprintf(pp.Writer(), "Imported %d entries\n", count)
	return err
}
