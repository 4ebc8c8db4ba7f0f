package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRowAffected 目标记录不存在（或已被并发删除）
	ErrNoRowAffected = errors.New("no row affected")
	// ErrVariantMismatch 更新的类型与已存储的帖子类型不一致
	ErrVariantMismatch = errors.New("post variant mismatch")
	// ErrEmptyResult 写入成功但回读为空
	ErrEmptyResult = errors.New("empty result after write")
)

// WriteError 写事务失败（约束冲突、连接异常、超时等）
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// wrapWrite 保留可区分的哨兵错误，其余统一包装为 WriteError
func wrapWrite(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNoRowAffected) || errors.Is(err, ErrVariantMismatch) {
		return err
	}
	return &WriteError{Op: op, Err: err}
}
