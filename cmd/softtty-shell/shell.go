package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/softtty/softtty-go/pkg/log"
	"github.com/softtty/softtty-go/pkg/pty"
	"github.com/softtty/softtty-go/pkg/tty"
	"github.com/softtty/softtty-go/pkg/usermem"
)

// shell is the interactive command loop over one subsystem instance.
type shell struct {
	sub       *pty.Subsystem
	rl        *readline.Instance
	tracePath string

	mu      sync.Mutex
	masters map[int]*tty.TTY
}

func newShell(sub *pty.Subsystem, tracePath string) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "softtty> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &shell{
		sub:       sub,
		rl:        rl,
		tracePath: tracePath,
		masters:   make(map[int]*tty.TTY),
	}, nil
}

// Close releases the readline instance.
func (s *shell) Close() error {
	return s.rl.Close()
}

// Run processes commands until exit or EOF.
func (s *shell) Run() error {
	for {
		line, err := s.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help", "?":
			s.printHelp()
		case "open", "o":
			s.cmdOpen()
		case "ls":
			s.cmdList()
		case "write", "w":
			s.cmdWrite(parts[1:])
		case "read", "r":
			s.cmdRead(parts[1:])
		case "lock":
			s.cmdLock(parts[1:], 1)
		case "unlock":
			s.cmdLock(parts[1:], 0)
		case "pkt":
			s.cmdPacket(parts[1:])
		case "stop":
			s.cmdFlow(parts[1:], false)
		case "start":
			s.cmdFlow(parts[1:], true)
		case "flush":
			s.cmdFlush(parts[1:])
		case "stat":
			s.cmdStat(parts[1:])
		case "log":
			s.cmdLog(parts[1:])
		case "close":
			s.cmdClose(parts[1:])
		case "quit", "exit", "q":
			return nil
		default:
			fmt.Fprintf(s.rl.Stdout(), "unknown command %q, try help\n", parts[0])
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprint(s.rl.Stdout(), `Commands:
  open                    install a new pair via the ptmx control node
  ls                      list live slave nodes
  write m|s <idx> <text>  forward text from one side of a pair
  read m|s <idx>          drain this side's receive port
  lock <idx>              lock the slave side (TIOCSPTLCK 1)
  unlock <idx>            unlock the slave side (TIOCSPTLCK 0)
  pkt <idx> on|off        toggle packet mode on the master
  stop <idx>              flow-control stop on the slave
  start <idx>             flow-control start on the slave
  flush <idx>             flush the master's write path
  stat <idx>              show both endpoints of a pair
  log [<pair-id>]         replay the trace capture, optionally one pair
  close <idx>             release a pair
  quit                    leave the shell
`)
}

func (s *shell) cmdOpen() {
	master, slave, err := s.sub.OpenPair()
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "open failed: %v\n", err)
		return
	}
	s.mu.Lock()
	s.masters[master.Index()] = master
	s.mu.Unlock()
	fmt.Fprintf(s.rl.Stdout(), "pair %d installed (pair id %s), slave pts/%d\n",
		master.Index(), master.PairID(), slave.Index())
}

func (s *shell) cmdList() {
	names := s.sub.Ptmx().Names()
	if len(names) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "no live pairs")
		return
	}
	for _, name := range names {
		fmt.Fprintln(s.rl.Stdout(), name)
	}
}

// endpoint resolves a "m|s <idx>" argument pair.
func (s *shell) endpoint(side string, idxArg string) (*tty.TTY, error) {
	index, err := strconv.Atoi(idxArg)
	if err != nil {
		return nil, fmt.Errorf("bad index %q", idxArg)
	}
	switch side {
	case "m", "master":
		s.mu.Lock()
		defer s.mu.Unlock()
		master, ok := s.masters[index]
		if !ok {
			return nil, fmt.Errorf("no master at index %d", index)
		}
		return master, nil
	case "s", "slave":
		return s.sub.Ptmx().Slave(index)
	default:
		return nil, fmt.Errorf("side must be m or s, got %q", side)
	}
}

func (s *shell) master(idxArg string) (*tty.TTY, error) {
	return s.endpoint("m", idxArg)
}

func (s *shell) cmdWrite(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.rl.Stdout(), "usage: write m|s <idx> <text>")
		return
	}
	src, err := s.endpoint(args[0], args[1])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), err)
		return
	}

	payload := []byte(strings.Join(args[2:], " "))
	n, err := src.Driver().Ops().Write(src, payload, len(payload))
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "write failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "accepted %d/%d bytes\n", n, len(payload))
}

func (s *shell) cmdRead(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "usage: read m|s <idx>")
		return
	}
	dst, err := s.endpoint(args[0], args[1])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), err)
		return
	}
	p := dst.Port()
	if p == nil {
		fmt.Fprintln(s.rl.Stdout(), "endpoint has no bound port")
		return
	}

	buf := make([]byte, p.Capacity())
	n, err := p.Read(buf)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "read failed: %v\n", err)
		return
	}
	if n == 0 {
		fmt.Fprintln(s.rl.Stdout(), "<empty>")
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%q\n", buf[:n])
}

// stageIoctl runs a 4-byte-argument ioctl on the pair's master.
func (s *shell) stageIoctl(idxArg string, cmd uint32, value uint32, readBack bool) {
	master, err := s.master(idxArg)
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), err)
		return
	}

	mem := usermem.NewBuffer(8)
	if err := mem.WriteU32(0, value); err != nil {
		fmt.Fprintln(s.rl.Stdout(), err)
		return
	}
	if err := master.Driver().Ops().Ioctl(master, cmd, 0, mem); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "ioctl failed: %v\n", err)
		return
	}
	if readBack {
		v, _ := mem.ReadU32(0)
		fmt.Fprintf(s.rl.Stdout(), "value: %d\n", v)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "ok")
}

func (s *shell) cmdLock(args []string, value uint32) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: lock|unlock <idx>")
		return
	}
	s.stageIoctl(args[0], pty.TIOCSPTLCK, value, false)
}

func (s *shell) cmdPacket(args []string) {
	if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
		fmt.Fprintln(s.rl.Stdout(), "usage: pkt <idx> on|off")
		return
	}
	var value uint32
	if args[1] == "on" {
		value = 1
	}
	s.stageIoctl(args[0], pty.TIOCPKT, value, false)
}

func (s *shell) cmdFlow(args []string, start bool) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: stop|start <idx>")
		return
	}
	slave, err := s.endpoint("s", args[0])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), err)
		return
	}

	ops := slave.Driver().Ops()
	if start {
		err = ops.Start(slave)
	} else {
		err = ops.Stop(slave)
	}
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "flow control failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "ok")
}

func (s *shell) cmdFlush(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: flush <idx>")
		return
	}
	master, err := s.master(args[0])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), err)
		return
	}
	if err := master.Driver().Ops().FlushBuffer(master); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "flush failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "ok")
}

func (s *shell) cmdStat(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: stat <idx>")
		return
	}
	master, err := s.master(args[0])
	if err != nil {
		fmt.Fprintln(s.rl.Stdout(), err)
		return
	}

	s.printInfo(master)
	if slave, err := master.Link(); err == nil {
		s.printInfo(slave)
	} else {
		fmt.Fprintln(s.rl.Stdout(), "peer: <absent>")
	}
}

func (s *shell) printInfo(t *tty.TTY) {
	info := t.Info()
	fmt.Fprintf(s.rl.Stdout(),
		"%s/%d %s count=%d flags=%s packet=%v pktstatus=%#x stopped=%v buffered=%d\n",
		info.Driver, info.Index, info.Subtype, info.Count, info.Flags,
		info.Packet, info.Pktstatus, info.Stopped, info.Buffered)
}

func (s *shell) cmdLog(args []string) {
	if s.tracePath == "" {
		fmt.Fprintln(s.rl.Stdout(), "no trace file configured, run with -trace")
		return
	}

	var filter log.Filter
	if len(args) > 0 {
		filter.PairID = args[0]
	}

	reader, err := log.NewFilteredReader(s.tracePath, filter)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "open trace: %v\n", err)
		return
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "read trace: %v\n", err)
			return
		}
		count++
		s.printEvent(event)
	}
	if count == 0 {
		fmt.Fprintln(s.rl.Stdout(), "no matching events")
	}
}

func (s *shell) printEvent(e log.Event) {
	prefix := fmt.Sprintf("%s %s/%d", e.Timestamp.Format("15:04:05.000000"), e.Driver, e.Index)
	switch {
	case e.Op != nil:
		if e.Op.Op == log.OpWrite {
			fmt.Fprintf(s.rl.Stdout(), "%s %s %d/%d bytes\n",
				prefix, e.Op.Op, e.Op.Accepted, e.Op.Requested)
			return
		}
		fmt.Fprintf(s.rl.Stdout(), "%s %s\n", prefix, e.Op.Op)
	case e.Error != nil:
		fmt.Fprintf(s.rl.Stdout(), "%s %s failed: %s\n", prefix, e.Error.Op, e.Error.Message)
	case e.State != nil:
		fmt.Fprintf(s.rl.Stdout(), "%s %s -> %s\n", prefix, e.State.What, e.State.NewState)
	}
}

func (s *shell) cmdClose(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: close <idx>")
		return
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "bad index %q\n", args[0])
		return
	}

	if err := s.sub.Ptmx().Release(index); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "close failed: %v\n", err)
		return
	}
	s.mu.Lock()
	delete(s.masters, index)
	s.mu.Unlock()
	fmt.Fprintln(s.rl.Stdout(), "ok")
}
