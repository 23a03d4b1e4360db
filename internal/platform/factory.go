package platform

import (
	"github.com/aretw0/onotes/pkg/core"
)

// New creates a Store over the adapter selected by opts. The store is not
// loaded yet; callers decide how to treat a failed Load.
//
//	store, err := onotes.New("~/.onotes", onotes.WithAdapter("sqlite"))
func New(uri string, opts ...Option) (*core.Store, error) {
	repo, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	codec, err := core.CodecByName(o.format)
	if err != nil {
		return nil, err
	}

	storeOpts := []core.StoreOption{core.WithCodec(codec)}
	if o.logger != nil {
		storeOpts = append(storeOpts, core.WithLogger(o.logger))
	}
	if size, ok := o.config["event_buffer"].(int); ok {
		storeOpts = append(storeOpts, core.WithEventBuffer(size))
	}

	return core.NewStore(repo, storeOpts...), nil
}
