package encoding

import (
	"sort"
)

// NegotiatorFactory builds a negotiator from options. Used to build negotiator sets
// from configuration.
type NegotiatorFactory func(opts ...NegotiatorOption) (Negotiator, error)

var negotiatorFactories = map[string]NegotiatorFactory{
	"json": func(opts ...NegotiatorOption) (Negotiator, error) {
		negotiator, err := NewJSONNegotiator(opts...)
		if err != nil {
			return nil, err
		}
		return negotiator, nil
	},
	"xml": func(opts ...NegotiatorOption) (Negotiator, error) {
		return NewXMLNegotiator(opts...), nil
	},
	"yaml": func(opts ...NegotiatorOption) (Negotiator, error) {
		return NewYAMLNegotiator(opts...), nil
	},
	"bson": func(opts ...NegotiatorOption) (Negotiator, error) {
		return NewBSONNegotiator(opts...), nil
	},
	"msgpack": func(opts ...NegotiatorOption) (Negotiator, error) {
		return NewMsgPackNegotiator(opts...), nil
	},
	"protobuf": func(opts ...NegotiatorOption) (Negotiator, error) {
		return NewProtobufNegotiator(opts...), nil
	},
	"text": func(opts ...NegotiatorOption) (Negotiator, error) {
		return NewTextNegotiator(opts...), nil
	},
}

// LookupFactory returns the factory registered under name.
func LookupFactory(name string) (NegotiatorFactory, bool) {
	factory, ok := negotiatorFactories[name]
	return factory, ok
}

// FactoryNames lists the registered factory names in sorted order.
func FactoryNames() []string {
	names := make([]string, 0, len(negotiatorFactories))
	for name := range negotiatorFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
