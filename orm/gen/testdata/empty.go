package testdata

type Basket interface {
	Put(name string)
}
