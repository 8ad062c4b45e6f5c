/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package flashdev

import "github.com/embeddedfw/uf2ota/ota"

// Registry is the concrete instance of the "flash-device registry"
// collaborator named in spec.md section 6 (find(name) -> {erase, write}).
type Registry struct {
	devices map[string]ota.FlashDevice
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]ota.FlashDevice)}
}

// Register associates name with dev, replacing any prior registration.
func (r *Registry) Register(name string, dev ota.FlashDevice) {
	r.devices[name] = dev
}

func (r *Registry) Find(name string) (ota.FlashDevice, bool) {
	dev, ok := r.devices[name]
	return dev, ok
}
