package registry

import "testing"

func TestMockRegistryRegisterDiscover(t *testing.T) {
	r := NewMockRegistry()
	if err := r.Register("kvservice", ServiceInstance{Addr: ":9001", Weight: 1}, 10); err != nil {
		t.Fatalf("register: %v", err)
	}
	instances, err := r.Discover("kvservice")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(instances) != 1 || instances[0].Addr != ":9001" {
		t.Fatalf("expect one instance at :9001, got %+v", instances)
	}
}

func TestMockRegistryDeregister(t *testing.T) {
	r := NewMockRegistry()
	r.Register("kvservice", ServiceInstance{Addr: ":9001"}, 10)
	r.Register("kvservice", ServiceInstance{Addr: ":9002"}, 10)

	if err := r.Deregister("kvservice", ":9001"); err != nil {
		t.Fatalf("deregister: %v", err)
	}
	instances, _ := r.Discover("kvservice")
	if len(instances) != 1 || instances[0].Addr != ":9002" {
		t.Fatalf("expect only :9002 left, got %+v", instances)
	}
}

func TestMockRegistryWatchReceivesUpdate(t *testing.T) {
	r := NewMockRegistry()
	ch := r.Watch("kvservice")

	r.Register("kvservice", ServiceInstance{Addr: ":9001"}, 10)

	select {
	case instances := <-ch:
		if len(instances) != 1 || instances[0].Addr != ":9001" {
			t.Fatalf("expect update with :9001, got %+v", instances)
		}
	default:
		t.Fatal("expect watch channel to have a pending update")
	}
}

func TestMockRegistryRegisterUpdatesExistingAddr(t *testing.T) {
	r := NewMockRegistry()
	r.Register("kvservice", ServiceInstance{Addr: ":9001", Weight: 1}, 10)
	r.Register("kvservice", ServiceInstance{Addr: ":9001", Weight: 5}, 10)

	instances, _ := r.Discover("kvservice")
	if len(instances) != 1 || instances[0].Weight != 5 {
		t.Fatalf("expect single updated instance with weight 5, got %+v", instances)
	}
}
