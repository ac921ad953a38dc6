// Package exempt runs fixtures with -exempt-bases=exempt.Unimplemented*.
package exempt

type UnimplementedGreeterServer struct{}

func (UnimplementedGreeterServer) SayHello(name string) (string, error) {
	return "", nil
}

type Store struct{}

func (Store) Get(key string) (string, error) { return "", nil }

// [GOOD]: Exempt base
type server struct{ UnimplementedGreeterServer }

func (s server) SayHello(name string) (string, error) {
	return "hello " + name, nil
}

// [BAD]: Not exempt
type cache struct{ Store }

func (c cache) Get(key string) (string, error) { // want `virtual override function Get is not calling parent implementation\.`
	return "", nil
}
