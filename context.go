package flowcore

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ochrecore/flowcore/internal/logging"
	"github.com/ochrecore/flowcore/internal/port"
	"github.com/ochrecore/flowcore/internal/rerr"
	"github.com/ochrecore/flowcore/internal/sched"
)

// barrierTimeout bounds how long Barrier waits for a single core to
// acknowledge a handshake before giving up — a core that never replies
// has either exited or deadlocked, and a barrier must not hang forever
// on it.
const barrierTimeout = 5 * time.Second

// QueuePair is one RX/TX queue pair bound to a core, as installed by a
// port driver collaborator during bring-up.
type QueuePair struct {
	PortName string
	QueueID  int
	Rx       port.RxQueue
	Tx       port.TxQueue
}

// PortHandle is a bring-up record for one configured port: its identity
// plus the RX/TX queue pairs the driver actually reported it could
// supply, already truncated to that count.
type PortHandle struct {
	ID      uuid.UUID
	Name    string
	Queues  []QueuePair
	KniName string // non-empty if this port owns a kernel-interface sibling
}

// PortDriver is the bring-up collaborator a caller supplies per port: it
// does whatever NIC/virtio/kernel-interface/virtual-queue setup the
// port's config.Name prefix implies and reports back the queue pairs it
// actually provisioned. Counts may be lower than requested (spec.md
// §4.7 step 3: "truncate to what the driver actually reported").
type PortDriver func(cfg PortConfig, kniHandle any) (queues []QueuePair, kni any, err error)

// Context holds the runtime's bring-up state: every configured port
// indexed by name and id, the queue set owned by each active core, and
// one control-channel sender and running scheduler per core. Reply is a
// buffered multi-producer channel the Context creates; no scheduler is
// handed it and nothing in this package sends on it, so performance
// samples come back only through the synchronous GetPerformance round trip.
type Context struct {
	log *logging.Logger

	portsByName map[string]*PortHandle
	portsByID   map[uuid.UUID]*PortHandle

	coreQueues map[int][]QueuePair
	cores      []int

	schedulers map[int]*sched.Scheduler
	control    map[int]chan<- sched.Command

	Reply chan sched.PerfSample
}

// NewContext runs the five-step bring-up sequence from spec.md §4.7
// against cfg, using drive to provision each configured port's queues.
func NewContext(cfg ProcessConfig, drive PortDriver) (*Context, error) {
	c := &Context{
		log:         logging.Default(),
		portsByName: make(map[string]*PortHandle),
		portsByID:   make(map[uuid.UUID]*PortHandle),
		coreQueues:  make(map[int][]QueuePair),
		schedulers:  make(map[int]*sched.Scheduler),
		control:     make(map[int]chan<- sched.Command),
		Reply:       make(chan sched.PerfSample, 64),
	}

	kniHandles := make(map[string]any)

	// Step 1: ports that own a kernel-interface sibling initialize first,
	// so the sibling lookup in step 2 has something to resolve against.
	var withKni, withoutKni []PortConfig
	for _, pc := range cfg.Ports {
		if len(pc.KCores) > 0 {
			withKni = append(withKni, pc)
		} else {
			withoutKni = append(withoutKni, pc)
		}
	}

	for _, pc := range withKni {
		queues, kni, err := drive(pc, nil)
		if err != nil {
			return nil, rerr.WithPort("context.NewContext", pc.Name, rerr.CodeFailedInitializePort, err.Error())
		}
		kniHandles[pc.Name] = kni
		c.addPort(pc, queues, pc.Name)
		c.log.Infof("port %s initialized with kernel-interface sibling, %d queues", pc.Name, len(queues))
	}

	// Step 2: every other port initializes now. The handle passed to drive
	// is looked up under the port's own name, which only step-1 ports are
	// filed under, so it is always nil here; PortConfig has no field that
	// names a sibling port to resolve against.
	for _, pc := range withoutKni {
		queues, _, err := drive(pc, kniHandles[pc.Name])
		if err != nil {
			return nil, rerr.WithPort("context.NewContext", pc.Name, rerr.CodeFailedInitializePort, err.Error())
		}
		c.addPort(pc, queues, "")
		c.log.Infof("port %s initialized, %d queues", pc.Name, len(queues))
	}

	// Step 3 happens inside addPort: queues is already truncated to
	// whatever drive() reported, since drive is the sole source of truth
	// for how many queues a driver actually provisioned.

	// Step 4: for each (port, rx_queue_index), file the queue pair under
	// its configured core.
	for _, pc := range cfg.Ports {
		ph := c.portsByName[pc.Name]
		for i, q := range ph.Queues {
			core := 0
			if i < len(pc.RxCores) {
				core = pc.RxCores[i]
			}
			c.coreQueues[core] = append(c.coreQueues[core], q)
		}
	}

	// Step 5: strict vs lax core-list reconciliation.
	coreSet := make(map[int]bool, len(cfg.Cores))
	for _, cr := range cfg.Cores {
		coreSet[cr] = true
	}
	for core := range c.coreQueues {
		if coreSet[core] {
			continue
		}
		if cfg.Strict {
			return nil, rerr.WithCore("context.NewContext", core, rerr.CodeConfigurationError,
				fmt.Sprintf("port queue references core %d not in configured core list", core))
		}
		coreSet[core] = true
	}

	cores := make([]int, 0, len(coreSet))
	for cr := range coreSet {
		cores = append(cores, cr)
	}
	sort.Ints(cores)
	c.cores = cores

	return c, nil
}

func (c *Context) addPort(pc PortConfig, queues []QueuePair, kniName string) {
	ph := &PortHandle{ID: uuid.New(), Name: pc.Name, Queues: queues, KniName: kniName}
	c.portsByName[pc.Name] = ph
	c.portsByID[ph.ID] = ph
}

// Port looks up a bring-up record by configured name.
func (c *Context) Port(name string) (*PortHandle, bool) {
	ph, ok := c.portsByName[name]
	return ph, ok
}

// PortByID looks up a bring-up record by its generated id.
func (c *Context) PortByID(id uuid.UUID) (*PortHandle, bool) {
	ph, ok := c.portsByID[id]
	return ph, ok
}

// Cores returns the active core list, sorted ascending, after §4.7 step
// 5's reconciliation.
func (c *Context) Cores() []int { return append([]int(nil), c.cores...) }

// CoreQueues returns the queue pairs filed under core.
func (c *Context) CoreQueues(core int) []QueuePair { return c.coreQueues[core] }

// StartSchedulers launches one scheduler goroutine per active core and
// records each one's control-channel sender.
func (c *Context) StartSchedulers() {
	for _, core := range c.cores {
		s := sched.NewScheduler(core)
		c.schedulers[core] = s
		c.control[core] = s.Control()
		go s.Run()
	}
}

// AddPipelineToRunQueue sends a Run command carrying closure to core's
// scheduler; closure receives the scheduler and this core's queue set so
// it can install whatever pipelines it builds, exactly as spec.md §4.7
// describes add_pipeline_to_run.
func (c *Context) AddPipelineToRunQueue(core int, closure func(*sched.Scheduler, []QueuePair)) error {
	ch, ok := c.control[core]
	if !ok {
		return rerr.WithCore("context.AddPipelineToRunQueue", core, rerr.CodeNoSchedulerOnCore, "no running scheduler on core")
	}
	queues := c.coreQueues[core]
	ch <- sched.RunCommand(func(s *sched.Scheduler) { closure(s, queues) })
	return nil
}

// ExecuteAll enters the execute loop on every active core's scheduler.
func (c *Context) ExecuteAll() {
	for _, core := range c.cores {
		c.control[core] <- sched.ExecuteCommand()
	}
}

// ShutdownAll signals every active core's scheduler to exit.
func (c *Context) ShutdownAll() {
	for _, core := range c.cores {
		c.control[core] <- sched.ShutdownCommand()
	}
}

// Barrier pauses every active core's scheduler at its next handshake
// opportunity and resumes them all together, mirroring the original's
// thread::park()/unpark() barrier: a Handshake is sent to every core,
// each core parks and acknowledges, and only once every core has
// acknowledged does Barrier send the Release that lets them all resume
// in the same instant.
func (c *Context) Barrier() error {
	acks := make([]chan bool, len(c.cores))
	for i, core := range c.cores {
		ch, ok := c.control[core]
		if !ok {
			return rerr.WithCore("context.Barrier", core, rerr.CodeNoSchedulerOnCore, "no running scheduler on core")
		}
		reply := make(chan bool, 1)
		acks[i] = reply
		ch <- sched.HandshakeCommand(reply)
	}

	for i, reply := range acks {
		select {
		case <-reply:
		case <-time.After(barrierTimeout):
			return rerr.WithCore("context.Barrier", c.cores[i], rerr.CodeNoSchedulerOnCore, "handshake timed out")
		}
	}

	for _, core := range c.cores {
		c.control[core] <- sched.ReleaseCommand()
	}
	return nil
}

// Control returns core's control-channel sender, for callers that need
// to issue SetTaskState/GetPerformance/Handshake commands directly.
func (c *Context) Control(core int) (chan<- sched.Command, bool) {
	ch, ok := c.control[core]
	return ch, ok
}
