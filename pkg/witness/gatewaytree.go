package witness

import (
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// defaultProcessPollingMs / defaultNetworkPollingMs are the documented
// default poll intervals when a caller does not override them.
const (
	defaultProcessPollingMs = 500
	defaultNetworkPollingMs = 2000
)

// GatewayDiscovery locates the gateway process whose descendant tree scopes
// witness emission. If pidFilePath is unreadable, it falls back to
// scanning the process list for a command containing processNameHint,
// excluding the daemon's own PID.
func GatewayDiscovery(pidFilePath, processNameHint string, ownPID int32) (int32, bool) {
	if pidFilePath != "" {
		if data, err := os.ReadFile(pidFilePath); err == nil {
			if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
				return int32(pid), true
			}
		}
	}

	if processNameHint == "" {
		return 0, false
	}
	procs, err := process.Processes()
	if err != nil {
		return 0, false
	}
	for _, p := range procs {
		if p.Pid == ownPID {
			continue
		}
		cmdline, err := p.Cmdline()
		if err != nil {
			continue
		}
		if strings.Contains(cmdline, processNameHint) {
			return p.Pid, true
		}
	}
	return 0, false
}

// gatherPairs reads the current (pid, ppid) relation for the whole host, for
// use by monitors other than ProcessMonitor that need to compute a process
// tree scope of their own.
func gatherPairs() map[int32]int32 {
	procs, err := process.Processes()
	if err != nil {
		return nil
	}
	pairs := make(map[int32]int32, len(procs))
	for _, p := range procs {
		if ppid, err := p.Ppid(); err == nil {
			pairs[p.Pid] = ppid
		}
	}
	return pairs
}

// ProcessTree computes the fixpoint of the (pid, ppid) relation rooted at
// root: repeated passes add every pid whose ppid is already in the tree,
// stopping when a pass adds nothing.
func ProcessTree(root int32, pairs map[int32]int32) map[int32]bool {
	tree := map[int32]bool{root: true}
	for {
		added := false
		for pid, ppid := range pairs {
			if tree[pid] {
				continue
			}
			if tree[ppid] {
				tree[pid] = true
				added = true
			}
		}
		if !added {
			break
		}
	}
	return tree
}
