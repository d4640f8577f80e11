package hvapi

// PhysAddr is a physical frame address.
type PhysAddr uintptr

// VirtAddr is a host-virtual address.
type VirtAddr uintptr

// MemoryAPI is the frame allocation boundary.
//
//apibind:interface
type MemoryAPI interface {
	// AllocFrame allocates one physical frame.
	AllocFrame() (PhysAddr, bool)
	// DeallocFrame returns a frame to the allocator.
	DeallocFrame(addr PhysAddr)
	// PhysToVirt translates a physical address into the host mapping.
	PhysToVirt(addr PhysAddr) VirtAddr
}
