package utils

import (
	"fmt"
	"net"
)

// PortInUse 检查本机端口是否已被占用
func PortInUse(port int) bool {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return true
	}
	l.Close()
	return false
}
